// Package unity provides descriptors for Unity serialized assets (object
// references, MonoBehaviour headers, TextAsset and the I2 Localization
// LanguageSourceAsset family) on top of goasset.
//
//	reg, _ := unity.RegisterTypes(goasset.Config{"engineVersion": "2019.4.31f1"})
//	codec, err := goasset.NewResolver(reg).Resolve("LanguageSourceAsset")
package unity

import (
	goasset "github.com/reoring/goasset"
)

// RegisterTypes builds a registry holding the Unity catalog, configured by
// cfg on top of Defaults. Extra catalogs are registered alongside; their type
// names must not clash with the built-in ones.
func RegisterTypes(cfg goasset.Config, opts ...goasset.Option) (*goasset.Registry, error) {
	return RegisterCatalogs(cfg, nil, opts...)
}

// RegisterCatalogs is RegisterTypes with additional catalogs.
func RegisterCatalogs(cfg goasset.Config, extra []goasset.Catalog, opts ...goasset.Option) (*goasset.Registry, error) {
	catalogs := append([]goasset.Catalog{Catalog()}, extra...)
	return goasset.NewRegistry(cfg, catalogs, opts...)
}
