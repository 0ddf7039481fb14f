package config

// File represents the structure of the estatedesk.yaml configuration file.
type File struct {
	API   APIDTO             `yaml:"api"`
	Views map[string]ViewDTO `yaml:"views" validate:"dive"`
	Log   LogDTO             `yaml:"log"`
}

// APIDTO configures the backend connection.
type APIDTO struct {
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
	Timeout  string `yaml:"timeout"`
	TokenEnv string `yaml:"token_env"`
}

// ViewDTO overrides catalog defaults for one view.
type ViewDTO struct {
	PageSize int `yaml:"page_size" validate:"gt=0,lte=500"`
}

// LogDTO controls logging.
type LogDTO struct {
	JSON    bool `yaml:"json"`
	Verbose bool `yaml:"verbose"`
}
