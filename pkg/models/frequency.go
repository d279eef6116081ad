package models

// SweepOptions selects the model frequency axis. Zero values use the
// 10 Hz to 10 MHz logarithmic default.
type SweepOptions struct {
	StartHz float64 `json:"start_hz,omitempty" minimum:"0" doc:"First frequency in Hz"`
	StopHz  float64 `json:"stop_hz,omitempty" minimum:"0" doc:"Last frequency in Hz"`
	Points  int     `json:"points,omitempty" minimum:"0" maximum:"10000" doc:"Number of frequencies"`
	Spacing string  `json:"spacing,omitempty" enum:"log,lin" doc:"Axis spacing"`
}

// SmoothingOptions selects the filters applied to measured curves
type SmoothingOptions struct {
	HalfWidth int `json:"half_width,omitempty" minimum:"0" maximum:"100" doc:"Savitzky-Golay half window, 0 disables"`
	Degree    int `json:"degree,omitempty" minimum:"0" maximum:"10" doc:"Savitzky-Golay polynomial degree"`
	Window    int `json:"window,omitempty" minimum:"0" maximum:"200" doc:"Moving average window, 0 disables"`
}
