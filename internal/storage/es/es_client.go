package es

import (
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

type ClientConfig struct {
	Addresses []string
	IndexName string
	Username  string
	Password  string
}

func newClient(config ClientConfig) (*elasticsearch.TypedClient, error) {
	if len(config.Addresses) == 0 {
		return nil, fmt.Errorf("no elasticsearch addresses configured")
	}
	if config.IndexName == "" {
		return nil, fmt.Errorf("no elasticsearch index configured")
	}

	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
	}
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	return elasticsearch.NewTypedClient(cfg)
}

// DocumentID is the index key of a record; record ids are only unique per content type.
func DocumentID(contentType, id string) string {
	return contentType + "-" + id
}
