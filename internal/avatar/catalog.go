// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// # Option Catalog

// Option is one selectable token with its display metadata.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	// Hex is the swatch color for palette fields; empty for list fields.
	Hex string `json:"hex,omitempty"`
}

// CatalogField groups the options offered for one field.
type CatalogField struct {
	Field   Field    `json:"field"`
	Label   string   `json:"label"`
	Options []Option `json:"options"`
}

// Catalog maps each field to its options. It is presentation data only; the
// controller accepts tokens that are not listed here.
type Catalog struct {
	options map[Field][]Option
}

// NewCatalog copies options into a catalog. Options without a label get the
// title-cased token as their label.
func NewCatalog(options map[Field][]Option) *Catalog {
	caser := cases.Title(language.English)

	catalog := &Catalog{options: make(map[Field][]Option, len(options))}
	for field, list := range options {
		copied := make([]Option, len(list))
		for i, option := range list {
			if option.Label == "" {
				option.Label = caser.String(option.Value)
			}
			copied[i] = option
		}
		catalog.options[field] = copied
	}
	return catalog
}

// DefaultCatalog is the built-in option set.
func DefaultCatalog() *Catalog {
	return NewCatalog(map[Field][]Option{
		FieldHairstyle: {
			{Value: "short", Label: "Short Hair"},
			{Value: "medium", Label: "Medium Hair"},
			{Value: "long", Label: "Long Hair"},
			{Value: "ponytail"},
			{Value: "bun"},
		},
		FieldHairColor: {
			{Value: "black", Hex: "#000000"},
			{Value: "brown", Hex: "#8B4513"},
			{Value: "blonde", Hex: "#FFD700"},
			{Value: "red", Hex: "#DC143C"},
			{Value: "gray", Hex: "#A9A9A9"},
		},
		FieldSkinTone: {
			{Value: "light", Hex: "#FFE0BD"},
			{Value: "fair", Hex: "#F1C27D"},
			{Value: "medium", Hex: "#E0AC69"},
			{Value: "olive", Hex: "#C68642"},
			{Value: "tan", Hex: "#A67B5B"},
			{Value: "brown", Hex: "#8D5524"},
			{Value: "dark", Hex: "#613D24"},
		},
		FieldClothing: {
			{Value: "casual"},
			{Value: "formal"},
			{Value: "sporty"},
			{Value: "sweater"},
		},
		FieldClothingColor: {
			{Value: "blue", Hex: "#3182CE"},
			{Value: "green", Hex: "#38A169"},
			{Value: "red", Hex: "#E53E3E"},
			{Value: "yellow", Hex: "#D69E2E"},
			{Value: "purple", Hex: "#805AD5"},
		},
	})
}

// Options returns a copy of the options for field.
func (c *Catalog) Options(field Field) []Option {
	return append([]Option(nil), c.options[field]...)
}

// Lookup finds the option for a token.
func (c *Catalog) Lookup(field Field, value string) (Option, bool) {
	for _, option := range c.options[field] {
		if option.Value == value {
			return option, true
		}
	}
	return Option{}, false
}

// Fields returns the catalog in presentation order, skipping empty fields.
func (c *Catalog) Fields() []CatalogField {
	result := make([]CatalogField, 0, len(c.options))
	for _, field := range Fields() {
		options := c.Options(field)
		if len(options) == 0 {
			continue
		}
		result = append(result, CatalogField{Field: field, Label: field.Label(), Options: options})
	}
	return result
}
