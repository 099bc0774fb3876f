package conf

import (
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/env"
	"github.com/go-kratos/kratos/v2/config/file"
)

// EnvPrefix selects the environment variables merged over the file source.
const EnvPrefix = "COMPANYSEARCH_"

// Load reads the config file or directory at path, overlays COMPANYSEARCH_*
// environment variables and resolves ${VAR:default} placeholders. The
// returned config must be closed by the caller.
func Load(path string) (*Bootstrap, config.Config, error) {
	c := config.New(
		config.WithSource(
			file.NewSource(path),
			env.NewSource(EnvPrefix),
		),
	)
	if err := c.Load(); err != nil {
		return nil, nil, err
	}

	var bc Bootstrap
	if err := c.Scan(&bc); err != nil {
		c.Close()
		return nil, nil, err
	}
	bc.applyDefaults()
	return &bc, c, nil
}

func (bc *Bootstrap) applyDefaults() {
	if bc.Server == nil {
		bc.Server = &Server{}
	}
	if bc.Server.HTTP == nil {
		bc.Server.HTTP = &Server_HTTP{Addr: "0.0.0.0:8000"}
	}
	if bc.Data == nil {
		bc.Data = &Data{}
	}
	if bc.Data.Database == nil {
		bc.Data.Database = &Data_Database{}
	}
	if bc.Data.Database.Driver == "" {
		bc.Data.Database.Driver = "postgres"
	}
	if bc.Data.Database.Pool == nil {
		bc.Data.Database.Pool = &Data_Pool{}
	}
	if bc.Data.Redis == nil {
		bc.Data.Redis = &Data_Redis{}
	}
	if bc.AI == nil {
		bc.AI = &AI{Provider: "none"}
	}
	if bc.Cache == nil {
		bc.Cache = &Cache{}
	}
	if bc.Cache.Prefilter == nil {
		bc.Cache.Prefilter = &Cache_Prefilter{}
	}
	if bc.Providers == nil {
		bc.Providers = &Providers{}
	}
	if bc.Providers.GooglePlaces == nil {
		bc.Providers.GooglePlaces = &Providers_Google{}
	}
	if bc.Providers.Facebook == nil {
		bc.Providers.Facebook = &Providers_Facebook{}
	}
}
