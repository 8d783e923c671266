package domain

import "time"

type SusceptibilityIndex string

const (
	SusceptibilityLow      SusceptibilityIndex = "Low"
	SusceptibilityModerate SusceptibilityIndex = "Moderate"
	SusceptibilityHigh     SusceptibilityIndex = "High"
)

type Fountain struct {
	ID                    int64               `json:"id"`
	Description           string              `json:"description"`
	SusceptibilityIndex   SusceptibilityIndex `json:"susceptibilityIndex"`
	ContinuousUseDeviceID int64               `json:"continuousUseDeviceId"`
	IsDrinkable           bool                `json:"isDrinkable"`
	Latitude              float64             `json:"latitude"`
	Longitude             float64             `json:"longitude"`
}

// WaterAnalysis is a radon reading owned by the upstream service.
// Date is midnight UTC of the sampling day.
type WaterAnalysis struct {
	ID                 int64     `json:"id"`
	RadonConcentration float64   `json:"radonConcentration"`
	FountainID         int64     `json:"fountainId"`
	Date               time.Time `json:"date"`
	DeviceID           int64     `json:"deviceId"`
}

type Device struct {
	ID             int64      `json:"id"`
	Model          string     `json:"model"`
	SerialNumber   string     `json:"serialNumber"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
}

// Resource is a favorite resolved against the upstream service.
// Exactly one of Fountain or Analysis is set, matching Category.
type Resource struct {
	Category Category       `json:"category"`
	ID       int64          `json:"id"`
	Fountain *Fountain      `json:"fountain,omitempty"`
	Analysis *WaterAnalysis `json:"analysis,omitempty"`
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay compares calendar dates, ignoring clock and location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
