package documents

import (
	"fmt"
	"os"
	"strings"
)

// Category maps a remote folder to a business category.
type Category struct {
	FolderID string `toml:"drive_id" json:"drive_id"`
	ID       string `toml:"id" json:"id"`
	Label    string `toml:"label" json:"label"`
}

// Config holds the category mapping and the table-store layout.
type Config struct {
	// Categories are searched in order when an upload is classified.
	Categories []Category `toml:"categories"`

	// TablePrefix is the table-store path under which each category
	// collection lives. Default: "db/document_center"
	TablePrefix string `toml:"table_prefix"`

	// DefaultCategory is assigned when no category owns the upload folder.
	// Default: "other"
	DefaultCategory string `toml:"default_category"`
}

type Env struct {
	TablePrefix     string
	DefaultCategory string
}

func defaultCategories() []Category {
	return []Category{
		{FolderID: "1tuS0EOHoFm9TiJlv3uyXpbMrSgIKC2QL", ID: "poa", Label: "Proof of Address"},
		{FolderID: "1VY0hfcj3EKcDMD6O_d2_gmiKL6rSt_M3", ID: "identity", Label: "Proof of Identity"},
		{FolderID: "1WNJkWYWPX6LqWGOTsdq6r1ihAkPJPMHb", ID: "sow", Label: "Source of Wealth"},
		{FolderID: "1ik8zbnEJ9fdruy8VPQ59EQqK6ze6cc4-", ID: "deposits", Label: "Deposits and Withdrawals"},
		{FolderID: "1-SB4FB1AukcpTMHlDXkfmqTHBOASX8iB", ID: "manifest", Label: "Manifests"},
	}
}

func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge replaces the category list wholesale when the overlay defines one.
func (c *Config) Merge(overlay *Config) {
	if len(overlay.Categories) > 0 {
		c.Categories = overlay.Categories
	}
	if overlay.TablePrefix != "" {
		c.TablePrefix = overlay.TablePrefix
	}
	if overlay.DefaultCategory != "" {
		c.DefaultCategory = overlay.DefaultCategory
	}
}

func (c *Config) loadDefaults() {
	if len(c.Categories) == 0 {
		c.Categories = defaultCategories()
	}
	if c.TablePrefix == "" {
		c.TablePrefix = "db/document_center"
	}
	if c.DefaultCategory == "" {
		c.DefaultCategory = "other"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.TablePrefix != "" {
		if v := os.Getenv(env.TablePrefix); v != "" {
			c.TablePrefix = v
		}
	}
	if env.DefaultCategory != "" {
		if v := os.Getenv(env.DefaultCategory); v != "" {
			c.DefaultCategory = v
		}
	}
}

func (c *Config) validate() error {
	c.TablePrefix = strings.TrimSuffix(c.TablePrefix, "/")
	if c.TablePrefix == "" {
		return fmt.Errorf("table_prefix required")
	}

	ids := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.ID == "" {
			return fmt.Errorf("categories[%d]: id required", i)
		}
		if cat.FolderID == "" {
			return fmt.Errorf("categories[%d]: drive_id required", i)
		}
		if ids[cat.ID] {
			return fmt.Errorf("categories[%d]: duplicate id %q", i, cat.ID)
		}
		ids[cat.ID] = true
	}
	return nil
}

// Classify returns the id of the first category whose folder is folderID,
// or DefaultCategory when none matches.
func (c *Config) Classify(folderID string) string {
	for _, cat := range c.Categories {
		if cat.FolderID == folderID {
			return cat.ID
		}
	}
	return c.DefaultCategory
}
