package checklist

// Region is the closed administrative-region code (UF) a site belongs to.
type Region string

const (
	RegionAC Region = "AC"
	RegionAM Region = "AM"
	RegionAP Region = "AP"
	RegionMA Region = "MA"
	RegionPA Region = "PA"
	RegionRO Region = "RO"
	RegionRR Region = "RR"
	RegionTO Region = "TO"
)

// NormalizeRegion validates and normalizes a region code string.
func NormalizeRegion(value string) (Region, bool) {
	switch Region(value) {
	case RegionAC, RegionAM, RegionAP, RegionMA, RegionPA, RegionRO, RegionRR, RegionTO:
		return Region(value), true
	default:
		return "", false
	}
}

// CabinetType classifies an equipment cabinet.
type CabinetType string

const (
	CabinetIndoor    CabinetType = "indoor"
	CabinetOutdoor   CabinetType = "outdoor"
	CabinetContainer CabinetType = "container"
	CabinetOther     CabinetType = "other"
)

// NormalizeCabinetType validates a cabinet type string.
func NormalizeCabinetType(value string) (CabinetType, bool) {
	switch CabinetType(value) {
	case CabinetIndoor, CabinetOutdoor, CabinetContainer, CabinetOther:
		return CabinetType(value), true
	default:
		return "", false
	}
}

// AccessTech is an access-network technology active in a cabinet.
type AccessTech string

const (
	AccessMetallic AccessTech = "metallic"
	AccessGPON     AccessTech = "gpon"
	AccessRadio    AccessTech = "radio"
	AccessDSLAM    AccessTech = "dslam"
)

// TransportTech is a transport-network technology active in a cabinet.
type TransportTech string

const (
	TransportSDH  TransportTech = "sdh"
	TransportDWDM TransportTech = "dwdm"
	TransportIP   TransportTech = "ip"
	TransportPDH  TransportTech = "pdh"
)

// Manufacturer identifies a power-converter or battery maker. Free-text
// makers seen in the field map to ManufacturerOther plus a label.
type Manufacturer string

const (
	ManufacturerEltek   Manufacturer = "eltek"
	ManufacturerVertiv  Manufacturer = "vertiv"
	ManufacturerDelta   Manufacturer = "delta"
	ManufacturerHuawei  Manufacturer = "huawei"
	ManufacturerIntelbr Manufacturer = "intelbras"
	ManufacturerOther   Manufacturer = "other"
)

// DCVoltage is the nominal DC bus voltage of a power converter.
type DCVoltage string

const (
	DCVoltage24  DCVoltage = "-24V"
	DCVoltage48  DCVoltage = "-48V"
	DCVoltage125 DCVoltage = "125V"
)

// CapacityAh is the discrete battery-bank capacity scale. Zero means the
// capacity plate was unreadable.
type CapacityAh int

const (
	Capacity40  CapacityAh = 40
	Capacity55  CapacityAh = 55
	Capacity63  CapacityAh = 63
	Capacity100 CapacityAh = 100
	Capacity150 CapacityAh = 150
	Capacity170 CapacityAh = 170
	Capacity200 CapacityAh = 200
)

// BatteryCondition is the observed state of a battery bank.
type BatteryCondition string

const (
	BatteryOK          BatteryCondition = "ok"
	BatterySwollen     BatteryCondition = "swollen"
	BatteryLeaking     BatteryCondition = "leaking"
	BatteryInoperative BatteryCondition = "inoperative"
	BatteryMissing     BatteryCondition = "missing"
)

// ClimateType classifies a cabinet's climate control.
type ClimateType string

const (
	ClimateAirConditioning ClimateType = "air_conditioning"
	ClimateForcedVent      ClimateType = "forced_ventilation"
	ClimatePassive         ClimateType = "passive"
)

// TowerType classifies the site's vertical structure.
type TowerType string

const (
	TowerSelfSupported TowerType = "self_supported"
	TowerGuyed         TowerType = "guyed"
	TowerRooftop       TowerType = "rooftop"
	TowerPole          TowerType = "pole"
)
