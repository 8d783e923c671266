package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fountain-monitor/internal/domain"
)

// wireDate accepts "2006-01-02" and any timestamp that starts with one.
type wireDate struct{ time.Time }

func (d *wireDate) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if len(s) < 10 {
		return fmt.Errorf("bad date %q", s)
	}
	t, err := time.Parse(time.DateOnly, s[:10])
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// wireSusceptibility accepts the enum by name or by ordinal.
type wireSusceptibility domain.SusceptibilityIndex

func (w *wireSusceptibility) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		switch n {
		case 0:
			*w = wireSusceptibility(domain.SusceptibilityLow)
		case 1:
			*w = wireSusceptibility(domain.SusceptibilityModerate)
		case 2:
			*w = wireSusceptibility(domain.SusceptibilityHigh)
		default:
			return fmt.Errorf("bad susceptibility index %d", n)
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "low":
		*w = wireSusceptibility(domain.SusceptibilityLow)
	case "moderate":
		*w = wireSusceptibility(domain.SusceptibilityModerate)
	case "high":
		*w = wireSusceptibility(domain.SusceptibilityHigh)
	case "":
	default:
		return fmt.Errorf("bad susceptibility index %q", s)
	}
	return nil
}

type fountainDTO struct {
	ID                    int64              `json:"id"`
	Description           string             `json:"description"`
	SusceptibilityIndex   wireSusceptibility `json:"susceptibilityIndex"`
	ContinuousUseDeviceID int64              `json:"continuousUseDeviceId"`
	IsDrinkable           bool               `json:"isDrinkable"`
	Latitude              float64            `json:"latitude"`
	Longitude             float64            `json:"longitude"`
}

func (f *fountainDTO) toDomain() domain.Fountain {
	return domain.Fountain{
		ID:                    f.ID,
		Description:           f.Description,
		SusceptibilityIndex:   domain.SusceptibilityIndex(f.SusceptibilityIndex),
		ContinuousUseDeviceID: f.ContinuousUseDeviceID,
		IsDrinkable:           f.IsDrinkable,
		Latitude:              f.Latitude,
		Longitude:             f.Longitude,
	}
}

type analysisDTO struct {
	ID                 int64    `json:"id"`
	RadonConcentration float64  `json:"radonConcentration"`
	FountainID         int64    `json:"fountainId"`
	Date               wireDate `json:"date"`
	DeviceID           int64    `json:"deviceId"`
}

func (a *analysisDTO) toDomain() domain.WaterAnalysis {
	return domain.WaterAnalysis{
		ID:                 a.ID,
		RadonConcentration: a.RadonConcentration,
		FountainID:         a.FountainID,
		Date:               a.Date.Time,
		DeviceID:           a.DeviceID,
	}
}

type deviceDTO struct {
	ID             int64     `json:"id"`
	Model          string    `json:"model"`
	SerialNumber   string    `json:"serialNumber"`
	ExpirationDate *wireDate `json:"expirationDate"`
}

func (d *deviceDTO) toDomain() domain.Device {
	out := domain.Device{ID: d.ID, Model: d.Model, SerialNumber: d.SerialNumber}
	if d.ExpirationDate != nil && !d.ExpirationDate.IsZero() {
		t := d.ExpirationDate.Time
		out.ExpirationDate = &t
	}
	return out
}
