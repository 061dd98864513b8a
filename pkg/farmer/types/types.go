package types

import (
	"strings"

	"github.com/kritlunkad/krishi-drishti-backend/entities"
)

// FarmerContext is what the client sends with /api/farmer and /api/chat.
type FarmerContext struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	CropType         string `json:"crop_type"`
	Location         string `json:"location"`
	FarmingMethod    string `json:"farming_method"`
	Symptoms         string `json:"symptoms"`
	SoilType         string `json:"soil_type"`
	Irrigation       string `json:"irrigation"`
	RecentWeather    string `json:"recent_weather"`
	CropsGrown       string `json:"crops_grown"`
	FarmSize         string `json:"farm_size"`
	PreviousDiseases string `json:"previous_diseases"`
	ExtraFarmType    string `json:"extra_farm_type"`
	AnyOtherInfo     string `json:"any_other_info"`
}

// TranslatableFields are the free-text fields farmers type in their own language.
var TranslatableFields = []string{
	"symptoms",
	"recent_weather",
	"any_other_info",
	"previous_diseases",
	"location",
	"crops_grown",
	"crop_type",
}

// Map returns the non-empty fields keyed by their JSON names.
func (f FarmerContext) Map() map[string]string {
	all := map[string]string{
		"id":                f.ID,
		"name":              f.Name,
		"crop_type":         f.CropType,
		"location":          f.Location,
		"farming_method":    f.FarmingMethod,
		"symptoms":          f.Symptoms,
		"soil_type":         f.SoilType,
		"irrigation":        f.Irrigation,
		"recent_weather":    f.RecentWeather,
		"crops_grown":       f.CropsGrown,
		"farm_size":         f.FarmSize,
		"previous_diseases": f.PreviousDiseases,
		"extra_farm_type":   f.ExtraFarmType,
		"any_other_info":    f.AnyOtherInfo,
	}
	out := make(map[string]string, len(all))
	for k, v := range all {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}

func (f FarmerContext) ToProfile() *entities.FarmerProfile {
	return &entities.FarmerProfile{
		UserID:           strings.TrimSpace(f.ID),
		Name:             f.Name,
		Location:         f.Location,
		CropsGrown:       f.CropsGrown,
		SoilType:         f.SoilType,
		IrrigationSystem: f.Irrigation,
		FarmSize:         f.FarmSize,
		PreviousDiseases: f.PreviousDiseases,
		FarmingMethod:    f.FarmingMethod,
		ExtraFarmType:    f.ExtraFarmType,
		CurrentWeather:   f.RecentWeather,
		AnyOtherInfo:     f.AnyOtherInfo,
	}
}
