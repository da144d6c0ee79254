package network

import (
	"context"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/assetd/models"
)

func addresses(ips []models.IPAddress) []string {
	out := make([]string, len(ips))
	for i, ip := range ips {
		out[i] = ip.Address
	}
	return out
}

func TestAvailabilityFollowsAssignments(t *testing.T) {
	al, st := newTestAllocator(t)
	ctx := context.Background()

	office, err := al.CreateVlan(ctx, &models.Vlan{Tag: 10, Name: "office"})
	require.NoError(t, err)
	lab, err := al.CreateVlan(ctx, &models.Vlan{Tag: 20, Name: "lab"})
	require.NoError(t, err)

	var pool []*PoolEntry
	for _, addr := range []string{"10.0.10.1", "10.0.10.2", "10.0.10.3"} {
		e, err := al.CreateAddress(ctx, &models.IPAddress{Address: addr, VlanID: &office.ID})
		require.NoError(t, err)
		pool = append(pool, e)
	}
	labIP, err := al.CreateAddress(ctx, &models.IPAddress{Address: "10.0.20.1", VlanID: &lab.ID})
	require.NoError(t, err)

	asset := createAsset(t, st, "Printer")

	free, err := al.AvailableByVLAN(ctx, office.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.10.1", "10.0.10.2", "10.0.10.3"}, addresses(free))

	assigned, err := al.Assign(ctx, pool[1].ID, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IPStatusAssigned, assigned.Status)
	assert.Equal(t, "Printer", *assigned.AssetName)

	free, err = al.AvailableByVLAN(ctx, office.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.10.1", "10.0.10.3"}, addresses(free))

	// other VLANs are unaffected
	free, err = al.AvailableByVLAN(ctx, lab.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{labIP.Address}, addresses(free))

	require.NoError(t, al.Unassign(ctx, pool[1].ID))
	free, err = al.AvailableByVLAN(ctx, office.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.10.1", "10.0.10.2", "10.0.10.3"}, addresses(free))

	assert.True(t, errdefs.IsNotFound(al.Unassign(ctx, pool[1].ID)))
}

func TestAssignErrors(t *testing.T) {
	al, st := newTestAllocator(t)
	ctx := context.Background()

	ip, err := al.CreateAddress(ctx, &models.IPAddress{Address: "192.168.1.10"})
	require.NoError(t, err)
	first := createAsset(t, st, "first")
	second := createAsset(t, st, "second")

	_, err = al.Assign(ctx, ip.ID, first.ID)
	require.NoError(t, err)

	_, err = al.Assign(ctx, ip.ID, second.ID)
	assert.True(t, errdefs.IsConflict(err))

	_, err = al.Assign(ctx, 999, first.ID)
	assert.True(t, errdefs.IsNotFound(err))

	other, err := al.CreateAddress(ctx, &models.IPAddress{Address: "192.168.1.11"})
	require.NoError(t, err)
	_, err = al.Assign(ctx, other.ID, 999)
	assert.True(t, errdefs.IsNotFound(err))
}

func TestCreateAssignedAddress(t *testing.T) {
	al, st := newTestAllocator(t)
	ctx := context.Background()
	asset := createAsset(t, st, "printer")

	entry, err := al.CreateAssignedAddress(ctx, &models.IPAddress{Address: "10.2.0.5"}, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IPStatusAssigned, entry.Status)
	require.NotNil(t, entry.AssetID)
	assert.Equal(t, asset.ID, *entry.AssetID)

	// a failed assignment leaves no address behind
	_, err = al.CreateAssignedAddress(ctx, &models.IPAddress{Address: "10.2.0.6"}, 4242)
	assert.True(t, errdefs.IsNotFound(err))

	pool, err := al.ListPool(ctx, nil)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "10.2.0.5", pool[0].Address)

	again, err := al.CreateAssignedAddress(ctx, &models.IPAddress{Address: "10.2.0.6"}, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IPStatusAssigned, again.Status)
}

func TestDeleteAssignedAddressIsRefused(t *testing.T) {
	al, st := newTestAllocator(t)
	ctx := context.Background()

	ip, err := al.CreateAddress(ctx, &models.IPAddress{Address: "10.1.1.1"})
	require.NoError(t, err)
	asset := createAsset(t, st, "server")
	_, err = al.Assign(ctx, ip.ID, asset.ID)
	require.NoError(t, err)

	err = al.DeleteAddress(ctx, ip.ID)
	assert.True(t, errdefs.IsConflict(err))
	assert.Contains(t, err.Error(), "currently assigned")

	still, err := al.GetAddress(ctx, ip.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.1.1.1", still.Address)

	require.NoError(t, al.Unassign(ctx, ip.ID))
	require.NoError(t, al.DeleteAddress(ctx, ip.ID))
	_, err = al.GetAddress(ctx, ip.ID)
	assert.True(t, errdefs.IsNotFound(err))
}

func TestAddressValidation(t *testing.T) {
	al, _ := newTestAllocator(t)
	ctx := context.Background()

	_, err := al.CreateAddress(ctx, &models.IPAddress{Address: "10.0.0.300"})
	assert.True(t, errdefs.IsInvalidArgument(err))

	missing := uint(42)
	_, err = al.CreateAddress(ctx, &models.IPAddress{Address: "10.0.0.1", VlanID: &missing})
	assert.True(t, errdefs.IsInvalidArgument(err))

	v6, err := al.CreateAddress(ctx, &models.IPAddress{Address: " 2001:DB8::1 "})
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::1", v6.Address)

	_, err = al.CreateAddress(ctx, &models.IPAddress{Address: "2001:db8::1"})
	assert.True(t, errdefs.IsConflict(err))

	updated, err := al.UpdateAddress(ctx, v6.ID, &models.IPAddress{Address: "2001:db8::2", Description: models.Ptr("gw")})
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::2", updated.Address)
	assert.Equal(t, "gw", *updated.Description)

	_, err = al.UpdateAddress(ctx, 999, &models.IPAddress{Address: "10.0.0.2"})
	assert.True(t, errdefs.IsNotFound(err))
}

func TestListPool(t *testing.T) {
	al, st := newTestAllocator(t)
	ctx := context.Background()

	vlan, err := al.CreateVlan(ctx, &models.Vlan{Tag: 30, Name: "voice"})
	require.NoError(t, err)
	a, err := al.CreateAddress(ctx, &models.IPAddress{Address: "10.3.0.1", VlanID: &vlan.ID})
	require.NoError(t, err)
	_, err = al.CreateAddress(ctx, &models.IPAddress{Address: "10.9.0.1"})
	require.NoError(t, err)

	phone := &models.Asset{Hostname: models.Ptr("desk-phone-7"), Status: models.StatusActive}
	require.NoError(t, st.Assets.Create(st.Session(ctx), phone))
	_, err = al.Assign(ctx, a.ID, phone.ID)
	require.NoError(t, err)

	pool, err := al.ListPool(ctx, nil)
	require.NoError(t, err)
	require.Len(t, pool, 2)

	assert.Equal(t, "10.3.0.1", pool[0].Address)
	assert.Equal(t, models.IPStatusAssigned, pool[0].Status)
	assert.Equal(t, "voice", *pool[0].VlanName)
	assert.Equal(t, phone.ID, *pool[0].AssetID)
	assert.Equal(t, "desk-phone-7", *pool[0].AssetName)

	assert.Equal(t, models.IPStatusAvailable, pool[1].Status)
	assert.Nil(t, pool[1].VlanName)
	assert.Nil(t, pool[1].AssetID)

	byVlan, err := al.ListPool(ctx, &vlan.ID)
	require.NoError(t, err)
	assert.Len(t, byVlan, 1)
}

func TestVlans(t *testing.T) {
	al, _ := newTestAllocator(t)
	ctx := context.Background()

	_, err := al.CreateVlan(ctx, &models.Vlan{Tag: 0, Name: "bad"})
	assert.True(t, errdefs.IsInvalidArgument(err))
	_, err = al.CreateVlan(ctx, &models.Vlan{Tag: 5})
	assert.True(t, errdefs.IsInvalidArgument(err))

	v, err := al.CreateVlan(ctx, &models.Vlan{Tag: 5, Name: "mgmt"})
	require.NoError(t, err)
	_, err = al.CreateVlan(ctx, &models.Vlan{Tag: 5, Name: "again"})
	assert.True(t, errdefs.IsConflict(err))

	_, err = al.CreateAddress(ctx, &models.IPAddress{Address: "10.5.0.1", VlanID: &v.ID})
	require.NoError(t, err)
	assert.True(t, errdefs.IsConflict(al.DeleteVlan(ctx, v.ID)))

	empty, err := al.CreateVlan(ctx, &models.Vlan{Tag: 6, Name: "spare"})
	require.NoError(t, err)
	require.NoError(t, al.DeleteVlan(ctx, empty.ID))

	vlans, err := al.ListVlans(ctx)
	require.NoError(t, err)
	assert.Len(t, vlans, 1)
}
