// Package goasset provides:
//
// - A type-resolved binary codec for Unity-style serialized asset records (Decode/Encode/Check/Normalize)
// - An ordered, dynamically typed ValueTree that round-trips through JSON and YAML
// - A TypeRegistry of descriptors, layered configuration and per-field overrides
// - A stable error taxonomy (type_not_found, unsupported_configuration, truncated_input,
//   malformed_input, missing_field, shape_mismatch) carrying a field path and byte offset
//
// Design policy:
// - Keep only public APIs in the root package; put wire-level helpers under internal/.
// - Place the descriptor DSL under dsl/, the built-in Unity catalog under unity/ and the CLI under cmd/unity.
// - Decode is byte-exact: re-encoding a decoded record yields the same bytes.
// - Encode validates the whole value before the first chunk is produced.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	reg, err := unity.RegisterTypes(goasset.Config{"engineVersion": "2019.4.31f1"})
//	codec, err := goasset.NewResolver(reg).Resolve("LanguageSourceAsset")
//	v, err := codec.DecodeBytes(data)
//
//	for chunk, err := range codec.Encode(v) {
//	    if err != nil {
//	        return err
//	    }
//	    w.Write(chunk)
//	}
package goasset
