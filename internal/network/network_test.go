package network

import (
	"context"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/assetd/internal/storage"
	"evalgo.org/assetd/internal/storage/storagetest"
	"evalgo.org/assetd/models"
)

func newTestAllocator(t *testing.T) (*Allocator, *storage.Storage) {
	t.Helper()
	st := storagetest.New(t)
	return NewAllocator(st, zerolog.Nop()), st
}

func createAsset(t *testing.T, st *storage.Storage, name string) *models.Asset {
	t.Helper()
	a := &models.Asset{Name: models.Ptr(name), Status: models.StatusActive}
	require.NoError(t, st.Assets.Create(st.Session(context.Background()), a))
	return a
}

func TestExtractCableNumbers(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"8 P-3 3M", []int{8, 3, 3}},
		{"3M-7", []int{3, 7}},
		{"P-12", []int{12}},
		{"patch", []int{}},
		{"", []int{}},
		{"007", []int{7}},
		{"99999999999999999999999 5", []int{5}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCableNumbers(tt.in))
		})
	}
}

func TestNextLANID(t *testing.T) {
	al, st := newTestAllocator(t)
	ctx := context.Background()

	empty, err := al.CreateRack(ctx, &models.Rack{Name: "empty"})
	require.NoError(t, err)
	next, err := al.NextLANID(ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	rack, err := al.CreateRack(ctx, &models.Rack{Name: "R1", Location: "Server room"})
	require.NoError(t, err)
	sw, err := al.CreateSwitch(ctx, &models.Switch{RackID: rack.ID, Name: "access-1", PortCount: 3})
	require.NoError(t, err)

	u := st.Session(ctx)
	for i, cable := range []*string{models.Ptr("3M-7"), models.Ptr("P-12"), nil} {
		p := sw.Ports[i]
		p.CableID = cable
		require.NoError(t, st.Ports.Update(u, &p))
	}

	next, err = al.NextLANID(ctx, rack.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, next)

	// ports of other racks do not count
	next, err = al.NextLANID(ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	_, err = al.NextLANID(ctx, 999)
	assert.True(t, errdefs.IsNotFound(err))
}

func TestCreateSwitchProvisionsPorts(t *testing.T) {
	al, _ := newTestAllocator(t)
	ctx := context.Background()

	rack, err := al.CreateRack(ctx, &models.Rack{Name: "R1"})
	require.NoError(t, err)

	sw, err := al.CreateSwitch(ctx, &models.Switch{RackID: rack.ID, Name: "core", PortCount: 5})
	require.NoError(t, err)
	require.Len(t, sw.Ports, 5)
	for i, p := range sw.Ports {
		assert.Equal(t, i+1, p.PortNumber)
		assert.Equal(t, models.PortDisabled, p.Status)
		assert.Equal(t, sw.ID, p.SwitchID)
	}

	bare, err := al.CreateSwitch(ctx, &models.Switch{RackID: rack.ID, Name: "spare"})
	require.NoError(t, err)
	assert.Empty(t, bare.Ports)

	_, err = al.CreateSwitch(ctx, &models.Switch{RackID: 999, Name: "ghost", PortCount: 4})
	assert.True(t, errdefs.IsNotFound(err))
	switches, err := al.ListSwitches(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, switches, 2)

	_, err = al.CreateSwitch(ctx, &models.Switch{RackID: rack.ID, Name: "neg", PortCount: -1})
	assert.True(t, errdefs.IsInvalidArgument(err))
}

func TestUpdateSwitchResizesPorts(t *testing.T) {
	al, _ := newTestAllocator(t)
	ctx := context.Background()

	rack, err := al.CreateRack(ctx, &models.Rack{Name: "R1"})
	require.NoError(t, err)
	sw, err := al.CreateSwitch(ctx, &models.Switch{RackID: rack.ID, Name: "core", PortCount: 4})
	require.NoError(t, err)

	grown, err := al.UpdateSwitch(ctx, sw.ID, &models.Switch{RackID: rack.ID, Name: "core", PortCount: 6})
	require.NoError(t, err)
	assert.Equal(t, 6, grown.PortCount)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, portNumbers(grown.Ports))

	shrunk, err := al.UpdateSwitch(ctx, sw.ID, &models.Switch{RackID: rack.ID, Name: "core", PortCount: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, portNumbers(shrunk.Ports))

	_, err = al.UpdateSwitch(ctx, 999, &models.Switch{RackID: rack.ID, Name: "x"})
	assert.True(t, errdefs.IsNotFound(err))
}

func portNumbers(ports []models.SwitchPort) []int {
	nums := make([]int, len(ports))
	for i, p := range ports {
		nums[i] = p.PortNumber
	}
	return nums
}

func TestAddAndDeletePorts(t *testing.T) {
	al, _ := newTestAllocator(t)
	ctx := context.Background()

	rack, err := al.CreateRack(ctx, &models.Rack{Name: "R1"})
	require.NoError(t, err)
	sw, err := al.CreateSwitch(ctx, &models.Switch{RackID: rack.ID, Name: "core", PortCount: 2})
	require.NoError(t, err)

	added, err := al.AddPort(ctx, &models.SwitchPort{SwitchID: sw.ID, CableID: models.Ptr("LAN-40")})
	require.NoError(t, err)
	assert.Equal(t, 3, added.PortNumber)
	assert.Equal(t, models.PortDisabled, added.Status)
	assert.NotZero(t, added.ID)

	detail, err := al.GetSwitch(ctx, sw.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.PortCount)

	// only the top port can go
	err = al.DeletePort(ctx, detail.Ports[0].ID)
	assert.True(t, errdefs.IsConflict(err))

	require.NoError(t, al.DeletePort(ctx, added.ID))
	detail, err = al.GetSwitch(ctx, sw.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.PortCount)
	assert.Equal(t, []int{1, 2}, portNumbers(detail.Ports))

	_, err = al.AddPort(ctx, &models.SwitchPort{SwitchID: 999})
	assert.True(t, errdefs.IsNotFound(err))
}

func TestUpdatePort(t *testing.T) {
	al, _ := newTestAllocator(t)
	ctx := context.Background()

	rack, err := al.CreateRack(ctx, &models.Rack{Name: "R1"})
	require.NoError(t, err)
	sw, err := al.CreateSwitch(ctx, &models.Switch{RackID: rack.ID, Name: "core", PortCount: 1})
	require.NoError(t, err)
	id := sw.Ports[0].ID

	p, err := al.UpdatePort(ctx, id, &models.SwitchPort{
		CableID:     models.Ptr("8"),
		ConnectedTo: models.Ptr("patch panel A/8"),
		Status:      models.PortActive,
	})
	require.NoError(t, err)
	assert.Equal(t, "8", *p.CableID)
	assert.Equal(t, models.PortActive, p.Status)
	assert.Equal(t, 1, p.PortNumber)

	// omitted status is kept
	p, err = al.UpdatePort(ctx, id, &models.SwitchPort{Notes: models.Ptr("relabelled")})
	require.NoError(t, err)
	assert.Equal(t, models.PortActive, p.Status)
	assert.Equal(t, "relabelled", *p.Notes)
	assert.Nil(t, p.CableID)

	_, err = al.UpdatePort(ctx, id, &models.SwitchPort{Status: "Melted"})
	assert.True(t, errdefs.IsInvalidArgument(err))

	_, err = al.UpdatePort(ctx, 999, &models.SwitchPort{})
	assert.True(t, errdefs.IsNotFound(err))
}

func TestRacks(t *testing.T) {
	al, _ := newTestAllocator(t)
	ctx := context.Background()

	r, err := al.CreateRack(ctx, &models.Rack{Name: " R1 ", Location: "HQ"})
	require.NoError(t, err)
	assert.Equal(t, "R1", r.Name)

	_, err = al.CreateRack(ctx, &models.Rack{Name: "R1", Location: "HQ"})
	assert.True(t, errdefs.IsConflict(err))

	_, err = al.CreateRack(ctx, &models.Rack{Name: "R1", Location: "Branch"})
	require.NoError(t, err)

	_, err = al.CreateRack(ctx, &models.Rack{Location: "HQ"})
	assert.True(t, errdefs.IsInvalidArgument(err))

	updated, err := al.UpdateRack(ctx, r.ID, &models.Rack{Name: "R1", Location: "HQ", Description: models.Ptr("top floor")})
	require.NoError(t, err)
	assert.Equal(t, "top floor", *updated.Description)

	_, err = al.CreateSwitch(ctx, &models.Switch{RackID: r.ID, Name: "core"})
	require.NoError(t, err)
	assert.True(t, errdefs.IsConflict(al.DeleteRack(ctx, r.ID)))

	racks, err := al.ListRacks(ctx)
	require.NoError(t, err)
	assert.Len(t, racks, 2)

	assert.True(t, errdefs.IsNotFound(al.DeleteRack(ctx, 999)))
}

func TestDeleteSwitchRemovesPorts(t *testing.T) {
	al, st := newTestAllocator(t)
	ctx := context.Background()

	rack, err := al.CreateRack(ctx, &models.Rack{Name: "R1"})
	require.NoError(t, err)
	sw, err := al.CreateSwitch(ctx, &models.Switch{RackID: rack.ID, Name: "core", PortCount: 3})
	require.NoError(t, err)

	require.NoError(t, al.DeleteSwitch(ctx, sw.ID))
	ports, err := st.Ports.ListBySwitches(st.Session(ctx), sw.ID)
	require.NoError(t, err)
	assert.Empty(t, ports)

	require.NoError(t, al.DeleteRack(ctx, rack.ID))
}

func TestDeleteVlanInUseByPort(t *testing.T) {
	al, _ := newTestAllocator(t)
	ctx := context.Background()

	vlan, err := al.CreateVlan(ctx, &models.Vlan{Tag: 30, Name: "voice"})
	require.NoError(t, err)
	rack, err := al.CreateRack(ctx, &models.Rack{Name: "R7"})
	require.NoError(t, err)
	sw, err := al.CreateSwitch(ctx, &models.Switch{RackID: rack.ID, Name: "access", PortCount: 1})
	require.NoError(t, err)
	portID := sw.Ports[0].ID

	_, err = al.UpdatePort(ctx, portID, &models.SwitchPort{VlanID: &vlan.ID})
	require.NoError(t, err)

	err = al.DeleteVlan(ctx, vlan.ID)
	assert.True(t, errdefs.IsConflict(err), "got %v", err)
	assert.Contains(t, err.Error(), "switch ports")

	_, err = al.UpdatePort(ctx, portID, &models.SwitchPort{})
	require.NoError(t, err)
	require.NoError(t, al.DeleteVlan(ctx, vlan.ID))
}
