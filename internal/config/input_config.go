package config

// InputConfig names the host list to read and the URL list to write
type InputConfig struct {
	InputFile  string `json:"input_file,omitempty" yaml:"input_file,omitempty" validate:"required"`
	OutputFile string `json:"output_file,omitempty" yaml:"output_file,omitempty" validate:"required"`
}

// NewDefaultInputConfig creates an empty input configuration; both paths must be supplied
func NewDefaultInputConfig() InputConfig {
	return InputConfig{}
}
