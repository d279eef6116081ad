package models

import (
	"github.com/RMahshie/fluxloop/internal/sensor"
)

// TraceRef points at an uploaded instrument export
type TraceRef struct {
	Role            string `json:"role" enum:"shunt,output,gain,noise" doc:"What the trace measured"`
	Key             string `json:"key" minLength:"1" doc:"Object key returned by the upload endpoint"`
	Scale           string `json:"scale" enum:"dBm,dB,dBV" doc:"Level scale of the export"`
	FrequencyColumn int    `json:"frequency_column,omitempty" minimum:"0" doc:"Zero-based frequency column"`
	LevelColumn     int    `json:"level_column,omitempty" minimum:"0" doc:"Zero-based level column"`
	FrequencyHeader string `json:"frequency_header,omitempty" doc:"Frequency column header, overrides the index"`
	LevelHeader     string `json:"level_header,omitempty" doc:"Level column header, overrides the index"`
	Delimiter       string `json:"delimiter,omitempty" maxLength:"1" doc:"Field separator, comma when empty"`
}

// MeasurementOptions describes a calibration run
type MeasurementOptions struct {
	Traces             []TraceRef       `json:"traces" minItems:"1" doc:"Uploaded traces"`
	ShuntResistanceOhm float64          `json:"shunt_resistance_ohm" doc:"Calibration loop shunt resistance in Ω"`
	DriverDistanceMM   float64          `json:"driver_distance_mm" doc:"On-axis distance between driver loop and sensor in mm"`
	DriverRadiusMM     float64          `json:"driver_radius_mm" doc:"Driver loop radius in mm"`
	ImpedanceOhm       float64          `json:"impedance_ohm,omitempty" minimum:"0" doc:"Analyzer input impedance in Ω, 50 when empty"`
	ReferenceVPerT     *float64         `json:"reference_v_per_t,omitempty" doc:"Independent calibration constant to check against"`
	ReferenceTolerance *float64         `json:"reference_tolerance,omitempty" minimum:"0" maximum:"1" doc:"Relative tolerance of the reference check, 0.05 when empty"`
	Smoothing          SmoothingOptions `json:"smoothing,omitempty" doc:"Filters for measured curves"`
}

// EvaluateOptions are shared by the evaluation endpoints
type EvaluateOptions struct {
	Sweep        SweepOptions        `json:"sweep,omitempty" doc:"Model frequency axis"`
	Measurements *MeasurementOptions `json:"measurements,omitempty" doc:"Optional calibration traces"`
	Export       bool                `json:"export,omitempty" doc:"Write curves and report to object storage"`
}

// EvaluateDesignRequest evaluates a stored design
type EvaluateDesignRequest struct {
	ID   string `path:"id" doc:"Design ID"`
	Body EvaluateOptions
}

// EvaluateInlineRequest evaluates a design sent with the request
type EvaluateInlineRequest struct {
	Body struct {
		Design sensor.Design `json:"design" required:"true" doc:"Sensor parameters"`
		EvaluateOptions
	}
}

// ReduceTracesRequest reduces traces without a sensor model
type ReduceTracesRequest struct {
	Body struct {
		MeasurementOptions
		Export bool `json:"export,omitempty" doc:"Write curves to object storage"`
	}
}

// CreateTraceUploadRequest represents a request for a trace upload URL
type CreateTraceUploadRequest struct {
	Body struct {
		Role     string `json:"role" enum:"shunt,output,gain,noise" required:"true" doc:"What the trace measured"`
		FileSize int64  `json:"file_size" minimum:"1" maximum:"10485760" required:"true" doc:"Export size in bytes"`
	}
}

// CreateTraceUploadResponse returns a pre-signed upload URL
type CreateTraceUploadResponse struct {
	Body struct {
		Key       string `json:"key" doc:"Object key to reference in evaluation requests"`
		UploadURL string `json:"upload_url" doc:"Pre-signed URL for a text/csv PUT"`
		ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
	}
}
