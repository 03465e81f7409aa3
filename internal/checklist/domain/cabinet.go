package checklist

import "time"

const maxBatteryBanks = 6

// CabinetRecord describes one physical equipment cabinet at the site.
type CabinetRecord struct {
	Type              CabinetType     `json:"type"`
	Protected         bool            `json:"protected"`
	AccessTechs       []AccessTech    `json:"access_techs"`
	TransportTechs    []TransportTech `json:"transport_techs"`
	Converter         ConverterRecord `json:"converter"`
	Batteries         BatterySet      `json:"batteries"`
	Climate           ClimateRecord   `json:"climate"`
	PanoramicPhoto    PhotoReference  `json:"panoramic_photo"`
	TransmissionPhoto PhotoReference  `json:"transmission_photo"`
	AccessPhoto       PhotoReference  `json:"access_photo"`
}

// ConverterRecord describes the DC power-conversion unit (FCC) of a cabinet.
type ConverterRecord struct {
	Manufacturer      Manufacturer   `json:"manufacturer"`
	ManufacturerLabel string         `json:"manufacturer_label,omitempty"`
	Voltage           DCVoltage      `json:"voltage"`
	Manageable        bool           `json:"manageable"`
	RemoteManaged     bool           `json:"remote_managed"`
	LoadAmps          float64        `json:"load_amps"`
	SupportedUnits    int            `json:"supported_units"`
	PanoramicPhoto    PhotoReference `json:"panoramic_photo"`
	ModulesPhoto      PhotoReference `json:"modules_photo"`
}

// BatterySet holds the battery banks backing one cabinet. BankCount always
// equals len(Banks); the record methods keep both in step.
type BatterySet struct {
	BankCount int            `json:"bank_count"`
	Banks     []BatteryBank  `json:"banks"`
	BankPhoto PhotoReference `json:"bank_photo"`
}

// BatteryType classifies battery chemistry/construction.
type BatteryType string

const (
	BatteryVRLA    BatteryType = "vrla"
	BatteryFlooded BatteryType = "flooded"
	BatteryLithium BatteryType = "lithium"
)

// BatteryBank describes one battery bank.
type BatteryBank struct {
	Type         BatteryType      `json:"type"`
	Manufacturer Manufacturer     `json:"manufacturer"`
	CapacityAh   CapacityAh       `json:"capacity_ah"`
	Manufactured time.Time        `json:"manufactured"`
	Condition    BatteryCondition `json:"condition"`
}

// ClimateRecord describes the cabinet's climate control.
type ClimateRecord struct {
	Type    ClimateType    `json:"type"`
	Working bool           `json:"working"`
	Photo   PhotoReference `json:"photo"`
}

// NewCabinet issues an empty cabinet with a healthy climate default.
func NewCabinet() CabinetRecord {
	return CabinetRecord{
		Climate: ClimateRecord{Working: true},
	}
}

// CabinetPatch carries the fields UpdateCabinet should replace. Nil fields
// are left untouched, so a patch can never silently drop siblings.
type CabinetPatch struct {
	Type              *CabinetType     `json:"type,omitempty"`
	Protected         *bool            `json:"protected,omitempty"`
	AccessTechs       *[]AccessTech    `json:"access_techs,omitempty"`
	TransportTechs    *[]TransportTech `json:"transport_techs,omitempty"`
	Converter         *ConverterRecord `json:"converter,omitempty"`
	Climate           *ClimateRecord   `json:"climate,omitempty"`
	PanoramicPhoto    *PhotoReference  `json:"panoramic_photo,omitempty"`
	TransmissionPhoto *PhotoReference  `json:"transmission_photo,omitempty"`
	AccessPhoto       *PhotoReference  `json:"access_photo,omitempty"`
	BankPhoto         *PhotoReference  `json:"bank_photo,omitempty"`
}

// UpdateCabinet merges the patch into the cabinet at index. Cabinets at
// other indices and the sequence length are never affected.
func (r *ChecklistRecord) UpdateCabinet(index int, patch CabinetPatch) error {
	if index < 0 || index >= len(r.Cabinets) {
		return ErrCabinetIndex
	}
	cab := &r.Cabinets[index]
	if patch.Type != nil {
		cab.Type = *patch.Type
	}
	if patch.Protected != nil {
		cab.Protected = *patch.Protected
	}
	if patch.AccessTechs != nil {
		cab.AccessTechs = append([]AccessTech(nil), (*patch.AccessTechs)...)
	}
	if patch.TransportTechs != nil {
		cab.TransportTechs = append([]TransportTech(nil), (*patch.TransportTechs)...)
	}
	if patch.Converter != nil {
		cab.Converter = *patch.Converter
	}
	if patch.Climate != nil {
		cab.Climate = *patch.Climate
	}
	if patch.PanoramicPhoto != nil {
		cab.PanoramicPhoto = *patch.PanoramicPhoto
	}
	if patch.TransmissionPhoto != nil {
		cab.TransmissionPhoto = *patch.TransmissionPhoto
	}
	if patch.AccessPhoto != nil {
		cab.AccessPhoto = *patch.AccessPhoto
	}
	if patch.BankPhoto != nil {
		cab.Batteries.BankPhoto = *patch.BankPhoto
	}
	r.bump()
	return nil
}

// AddBatteryBank appends a default bank to the cabinet at index and bumps
// the declared count atomically. Adding beyond six banks is a no-op.
func (r *ChecklistRecord) AddBatteryBank(index int) error {
	if index < 0 || index >= len(r.Cabinets) {
		return ErrCabinetIndex
	}
	set := &r.Cabinets[index].Batteries
	if len(set.Banks) >= maxBatteryBanks {
		return nil
	}
	set.Banks = append(set.Banks, BatteryBank{Condition: BatteryOK})
	set.BankCount = len(set.Banks)
	r.bump()
	return nil
}

// RemoveBatteryBank drops the bank at bankIndex, keeping count and sequence
// length synchronized.
func (r *ChecklistRecord) RemoveBatteryBank(index, bankIndex int) error {
	if index < 0 || index >= len(r.Cabinets) {
		return ErrCabinetIndex
	}
	set := &r.Cabinets[index].Batteries
	if bankIndex < 0 || bankIndex >= len(set.Banks) {
		return ErrBankIndex
	}
	set.Banks = append(set.Banks[:bankIndex], set.Banks[bankIndex+1:]...)
	set.BankCount = len(set.Banks)
	r.bump()
	return nil
}

// UpdateBatteryBank replaces the bank at bankIndex.
func (r *ChecklistRecord) UpdateBatteryBank(index, bankIndex int, bank BatteryBank) error {
	if index < 0 || index >= len(r.Cabinets) {
		return ErrCabinetIndex
	}
	set := &r.Cabinets[index].Batteries
	if bankIndex < 0 || bankIndex >= len(set.Banks) {
		return ErrBankIndex
	}
	set.Banks[bankIndex] = bank
	r.bump()
	return nil
}
