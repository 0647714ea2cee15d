package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/storefront/services/storefront/internal/models"
)

// SeedFile is the YAML layout accepted by the seed command.
type SeedFile struct {
	Categories []SeedCategory `yaml:"categories"`
	Products   []SeedProduct  `yaml:"products"`
}

type SeedCategory struct {
	ID    uint   `yaml:"id"`
	Title string `yaml:"title"`
}

type SeedProduct struct {
	ID         uint   `yaml:"id"`
	CategoryID *uint  `yaml:"category_id,omitempty"`
	Title      string `yaml:"title"`
	Price      string `yaml:"price"`
	NewPrice   string `yaml:"new_price,omitempty"`
	Cover      string `yaml:"cover,omitempty"`
}

// ParseSeed decodes and validates a seed document.
func ParseSeed(r io.Reader) ([]models.Category, []models.Product, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("decode seed: %w", err)
	}

	cats := make([]models.Category, 0, len(f.Categories))
	for i, c := range f.Categories {
		if c.ID == 0 || c.Title == "" {
			return nil, nil, fmt.Errorf("categories[%d]: id and title are required", i)
		}
		cats = append(cats, models.Category{ID: c.ID, Title: c.Title})
	}

	products := make([]models.Product, 0, len(f.Products))
	for i, p := range f.Products {
		if p.ID == 0 || p.Title == "" {
			return nil, nil, fmt.Errorf("products[%d]: id and title are required", i)
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil || price.IsNegative() {
			return nil, nil, fmt.Errorf("products[%d]: invalid price %q", i, p.Price)
		}
		mp := models.Product{
			ID:         p.ID,
			CategoryID: p.CategoryID,
			Title:      p.Title,
			Price:      price,
			Cover:      p.Cover,
		}
		if p.NewPrice != "" {
			np, err := decimal.NewFromString(p.NewPrice)
			if err != nil || np.IsNegative() {
				return nil, nil, fmt.Errorf("products[%d]: invalid new_price %q", i, p.NewPrice)
			}
			mp.NewPrice = decimal.NewNullDecimal(np)
		}
		products = append(products, mp)
	}
	return cats, products, nil
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert categories and products from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return err
			}
			defer fh.Close()

			cats, products, err := ParseSeed(fh)
			if err != nil {
				return err
			}

			r, closeFn, err := rootOpts.repo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := r.UpsertCatalog(cmd.Context(), cats, products); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories, %d products\n", len(cats), len(products))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (YAML)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
