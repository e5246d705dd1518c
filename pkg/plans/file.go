package plans

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk YAML layout of a catalog
type catalogFile struct {
	Plans []planEntry `yaml:"plans"`
}

type planEntry struct {
	Name    string   `yaml:"name"`
	Minutes *int     `yaml:"minutes,omitempty"`
	DataGB  *float64 `yaml:"data_gb,omitempty"`
	SMS     *int     `yaml:"sms,omitempty"`
}

// LoadCatalog loads a catalog from a YAML file. Omitted quotas are unlimited.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	plans := make([]Plan, 0, len(file.Plans))
	for _, e := range file.Plans {
		plans = append(plans, Plan{
			Name:        e.Name,
			MinuteQuota: e.Minutes,
			DataQuota:   e.DataGB,
			SMSQuota:    e.SMS,
		})
	}

	catalog, err := NewCatalog(plans...)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return catalog, nil
}

// SaveCatalog writes a catalog to a YAML file
func SaveCatalog(c *Catalog, path string) error {
	var file catalogFile
	for _, p := range c.plans {
		file.Plans = append(file.Plans, planEntry{
			Name:    p.Name,
			Minutes: p.MinuteQuota,
			DataGB:  p.DataQuota,
			SMS:     p.SMSQuota,
		})
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	return nil
}
