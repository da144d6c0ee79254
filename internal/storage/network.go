package storage

import (
	"fmt"

	"evalgo.org/assetd/models"
)

// VlanRepository persists VLANs.
type VlanRepository interface {
	Create(u *Unit, v *models.Vlan) error
	Get(u *Unit, id uint) (*models.Vlan, error)
	List(u *Unit) ([]models.Vlan, error)
	Delete(u *Unit, id uint) error
}

// IPAddressRepository persists address pool entries.
type IPAddressRepository interface {
	Create(u *Unit, ip *models.IPAddress) error
	Get(u *Unit, id uint) (*models.IPAddress, error)
	Update(u *Unit, ip *models.IPAddress) error
	Delete(u *Unit, id uint) error
	// List returns the pool, optionally restricted to one VLAN.
	List(u *Unit, vlanID *uint) ([]models.IPAddress, error)
}

// IPAssignmentRepository persists address-to-asset bindings.
type IPAssignmentRepository interface {
	Create(u *Unit, a *models.IPAssignment) error
	// GetByAddress returns the assignment of an address, or nil when it is free.
	GetByAddress(u *Unit, ipID uint) (*models.IPAssignment, error)
	DeleteByAddress(u *Unit, ipID uint) error
	DeleteByAsset(u *Unit, assetID uint) error
	List(u *Unit) ([]models.IPAssignment, error)
	// AssignedAddressIDs returns the ids of every assigned address in the pool.
	AssignedAddressIDs(u *Unit) ([]uint, error)
}

// RackRepository persists racks.
type RackRepository interface {
	Create(u *Unit, r *models.Rack) error
	Get(u *Unit, id uint) (*models.Rack, error)
	Update(u *Unit, r *models.Rack) error
	Delete(u *Unit, id uint) error
	List(u *Unit) ([]models.Rack, error)
}

// SwitchRepository persists switches.
type SwitchRepository interface {
	Create(u *Unit, s *models.Switch) error
	Get(u *Unit, id uint) (*models.Switch, error)
	Update(u *Unit, s *models.Switch) error
	Delete(u *Unit, id uint) error
	// List returns all switches, or those of one rack.
	List(u *Unit, rackID *uint) ([]models.Switch, error)
}

// SwitchPortRepository persists switch ports.
type SwitchPortRepository interface {
	CreateBatch(u *Unit, ports []models.SwitchPort) error
	Get(u *Unit, id uint) (*models.SwitchPort, error)
	Update(u *Unit, p *models.SwitchPort) error
	Delete(u *Unit, id uint) error
	ListBySwitches(u *Unit, switchIDs ...uint) ([]models.SwitchPort, error)
	DeleteBySwitch(u *Unit, switchID uint) error
	// DeleteAbove removes the ports of a switch numbered above n.
	DeleteAbove(u *Unit, switchID uint, n int) error
	CountByVlan(u *Unit, vlanID uint) (int64, error)
}

type gormVlans struct{}

func (gormVlans) Create(u *Unit, v *models.Vlan) error {
	return translate(u.db.Create(v).Error, fmt.Sprintf("vlan %d", v.Tag))
}

func (gormVlans) Get(u *Unit, id uint) (*models.Vlan, error) {
	var v models.Vlan
	if err := u.db.First(&v, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("vlan %d", id))
	}
	return &v, nil
}

func (gormVlans) List(u *Unit) ([]models.Vlan, error) {
	vlans := []models.Vlan{}
	return vlans, translate(u.db.Order("tag").Find(&vlans).Error, "vlans")
}

func (gormVlans) Delete(u *Unit, id uint) error {
	return expectRow(u.db.Delete(&models.Vlan{}, id), fmt.Sprintf("vlan %d", id))
}

type gormIPAddresses struct{}

func ipRef(id uint) string {
	return fmt.Sprintf("ip address %d", id)
}

func (gormIPAddresses) Create(u *Unit, ip *models.IPAddress) error {
	return translate(u.db.Create(ip).Error, fmt.Sprintf("ip address %s", ip.Address))
}

func (gormIPAddresses) Get(u *Unit, id uint) (*models.IPAddress, error) {
	var ip models.IPAddress
	if err := u.db.First(&ip, id).Error; err != nil {
		return nil, translate(err, ipRef(id))
	}
	return &ip, nil
}

func (gormIPAddresses) Update(u *Unit, ip *models.IPAddress) error {
	res := u.db.Model(&models.IPAddress{ID: ip.ID}).
		Select("address", "vlan_id", "description").
		Updates(ip)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("ip address %s", ip.Address))
	}
	return expectRow(res, ipRef(ip.ID))
}

func (gormIPAddresses) Delete(u *Unit, id uint) error {
	return expectRow(u.db.Delete(&models.IPAddress{}, id), ipRef(id))
}

func (gormIPAddresses) List(u *Unit, vlanID *uint) ([]models.IPAddress, error) {
	ips := []models.IPAddress{}
	tx := u.db.Order("address")
	if vlanID != nil {
		tx = tx.Where("vlan_id = ?", *vlanID)
	}
	return ips, translate(tx.Find(&ips).Error, "ip addresses")
}

type gormAssignments struct{}

func (gormAssignments) Create(u *Unit, a *models.IPAssignment) error {
	return translate(u.db.Create(a).Error, fmt.Sprintf("assignment of %s", ipRef(a.IPAddressID)))
}

func (gormAssignments) GetByAddress(u *Unit, ipID uint) (*models.IPAssignment, error) {
	var list []models.IPAssignment
	if err := u.db.Where("ip_address_id = ?", ipID).Limit(1).Find(&list).Error; err != nil {
		return nil, translate(err, "ip assignment")
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (gormAssignments) DeleteByAddress(u *Unit, ipID uint) error {
	res := u.db.Where("ip_address_id = ?", ipID).Delete(&models.IPAssignment{})
	return expectRow(res, fmt.Sprintf("assignment of %s", ipRef(ipID)))
}

func (gormAssignments) DeleteByAsset(u *Unit, assetID uint) error {
	err := u.db.Where("asset_id = ?", assetID).Delete(&models.IPAssignment{}).Error
	return translate(err, "ip assignments")
}

func (gormAssignments) List(u *Unit) ([]models.IPAssignment, error) {
	list := []models.IPAssignment{}
	return list, translate(u.db.Find(&list).Error, "ip assignments")
}

func (gormAssignments) AssignedAddressIDs(u *Unit) ([]uint, error) {
	var ids []uint
	err := u.db.Model(&models.IPAssignment{}).Pluck("ip_address_id", &ids).Error
	return ids, translate(err, "ip assignments")
}

type gormRacks struct{}

func rackRef(id uint) string {
	return fmt.Sprintf("rack %d", id)
}

func (gormRacks) Create(u *Unit, r *models.Rack) error {
	return translate(u.db.Create(r).Error, fmt.Sprintf("rack %q at %q", r.Name, r.Location))
}

func (gormRacks) Get(u *Unit, id uint) (*models.Rack, error) {
	var r models.Rack
	if err := u.db.First(&r, id).Error; err != nil {
		return nil, translate(err, rackRef(id))
	}
	return &r, nil
}

func (gormRacks) Update(u *Unit, r *models.Rack) error {
	res := u.db.Model(&models.Rack{ID: r.ID}).
		Select("name", "location", "description").
		Updates(r)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("rack %q at %q", r.Name, r.Location))
	}
	return expectRow(res, rackRef(r.ID))
}

func (gormRacks) Delete(u *Unit, id uint) error {
	return expectRow(u.db.Delete(&models.Rack{}, id), rackRef(id))
}

func (gormRacks) List(u *Unit) ([]models.Rack, error) {
	racks := []models.Rack{}
	return racks, translate(u.db.Order("name, location").Find(&racks).Error, "racks")
}

type gormSwitches struct{}

func switchRef(id uint) string {
	return fmt.Sprintf("switch %d", id)
}

func (gormSwitches) Create(u *Unit, s *models.Switch) error {
	return translate(u.db.Create(s).Error, "switch")
}

func (gormSwitches) Get(u *Unit, id uint) (*models.Switch, error) {
	var s models.Switch
	if err := u.db.First(&s, id).Error; err != nil {
		return nil, translate(err, switchRef(id))
	}
	return &s, nil
}

func (gormSwitches) Update(u *Unit, s *models.Switch) error {
	res := u.db.Model(&models.Switch{ID: s.ID}).
		Select("rack_id", "name", "model", "management_ip", "port_count").
		Updates(s)
	return expectRow(res, switchRef(s.ID))
}

func (gormSwitches) Delete(u *Unit, id uint) error {
	return expectRow(u.db.Delete(&models.Switch{}, id), switchRef(id))
}

func (gormSwitches) List(u *Unit, rackID *uint) ([]models.Switch, error) {
	switches := []models.Switch{}
	tx := u.db.Order("id")
	if rackID != nil {
		tx = tx.Where("rack_id = ?", *rackID)
	}
	return switches, translate(tx.Find(&switches).Error, "switches")
}

type gormPorts struct{}

func portRef(id uint) string {
	return fmt.Sprintf("switch port %d", id)
}

func (gormPorts) CreateBatch(u *Unit, ports []models.SwitchPort) error {
	if len(ports) == 0 {
		return nil
	}
	return translate(u.db.CreateInBatches(&ports, 200).Error, "switch port")
}

func (gormPorts) Get(u *Unit, id uint) (*models.SwitchPort, error) {
	var p models.SwitchPort
	if err := u.db.First(&p, id).Error; err != nil {
		return nil, translate(err, portRef(id))
	}
	return &p, nil
}

func (gormPorts) Update(u *Unit, p *models.SwitchPort) error {
	res := u.db.Model(&models.SwitchPort{ID: p.ID}).
		Select("cable_id", "vlan_id", "connected_to", "notes", "status").
		Updates(p)
	return expectRow(res, portRef(p.ID))
}

func (gormPorts) Delete(u *Unit, id uint) error {
	return expectRow(u.db.Delete(&models.SwitchPort{}, id), portRef(id))
}

func (gormPorts) ListBySwitches(u *Unit, switchIDs ...uint) ([]models.SwitchPort, error) {
	ports := []models.SwitchPort{}
	if len(switchIDs) == 0 {
		return ports, nil
	}
	err := u.db.Where("switch_id IN ?", switchIDs).
		Order("switch_id, port_number").
		Find(&ports).Error
	return ports, translate(err, "switch ports")
}

func (gormPorts) DeleteBySwitch(u *Unit, switchID uint) error {
	err := u.db.Where("switch_id = ?", switchID).Delete(&models.SwitchPort{}).Error
	return translate(err, "switch ports")
}

func (gormPorts) DeleteAbove(u *Unit, switchID uint, n int) error {
	err := u.db.Where("switch_id = ? AND port_number > ?", switchID, n).
		Delete(&models.SwitchPort{}).Error
	return translate(err, "switch ports")
}

func (gormPorts) CountByVlan(u *Unit, vlanID uint) (int64, error) {
	var n int64
	err := u.db.Model(&models.SwitchPort{}).Where("vlan_id = ?", vlanID).Count(&n).Error
	return n, translate(err, "switch ports")
}
