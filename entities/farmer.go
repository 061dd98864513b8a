package entities

import "time"

type FarmerProfile struct {
	UserID           string    `gorm:"primaryKey" json:"id"`
	Name             string    `json:"name"`
	Location         string    `json:"location"`
	CropsGrown       string    `json:"crops_grown"`
	SoilType         string    `json:"soil_type"`
	IrrigationSystem string    `json:"irrigation_system"`
	FarmSize         string    `json:"farm_size"`
	PreviousDiseases string    `json:"previous_diseases"`
	FarmingMethod    string    `json:"farming_method"` // organic|chemical|mixed, free text
	ExtraFarmType    string    `json:"extra_farm_type"`
	CurrentWeather   string    `json:"current_weather"`
	AnyOtherInfo     string    `json:"any_other_info"`
	CreatedAt        time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
