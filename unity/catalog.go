package unity

import (
	goasset "github.com/reoring/goasset"
	"github.com/reoring/goasset/dsl"
)

// Option keys read by catalog types through When gates.
const (
	// OptTextAssetBinary decodes TextAsset.m_Script as raw bytes instead of text.
	OptTextAssetBinary = "textAsset.binary"
	// OptTermDescription includes TermData.Description, which only editor
	// builds serialize.
	OptTermDescription = "i2.termDescription"
	// OptLanguagesTouch includes TermData.Languages_Touch, dropped by newer
	// I2 Localization releases.
	OptLanguagesTouch = "i2.languagesTouch"
)

// Defaults are the serialization settings of Unity's binary asset format.
func Defaults() goasset.Config {
	return goasset.Config{
		"byteOrder":      "little",
		"stringLength":   "int32",
		"arrayLength":    "int32",
		"stringEncoding": "utf8",
		"alignment":      4,
	}
}

// Catalog returns the built-in Unity types.
func Catalog() goasset.Catalog {
	return goasset.Catalog{
		Name:     "unity",
		Defaults: Defaults(),
		Types: []goasset.TypeDescriptor{
			pptr(),
			monoBehaviour(),
			textAsset(),
			languageSourceAsset(),
			languageSourceData(),
			termData(),
			languageData(),
		},
	}
}

func pptr() goasset.TypeDescriptor {
	return dsl.Type("PPtr").
		Doc("object reference: file index and path id").
		Field(
			dsl.Int32("m_FileID"),
			dsl.Int64("m_PathID").Since("5.0"),
			dsl.Int32("m_PathID").Before("5.0"),
		).
		MustBuild()
}

func monoBehaviour() goasset.TypeDescriptor {
	return dsl.Type("MonoBehaviour").
		Doc("script component header").
		Field(
			dsl.Ref("m_GameObject", "PPtr"),
			dsl.Uint8("m_Enabled").Aligned(),
			dsl.Ref("m_Script", "PPtr"),
			dsl.String("m_Name").Aligned(),
		).
		MustBuild()
}

func textAsset() goasset.TypeDescriptor {
	return dsl.Type("TextAsset").
		Doc("named text or binary blob").
		Option(OptTextAssetBinary).
		Field(
			dsl.String("m_Name").Aligned(),
			dsl.String("m_Script").Aligned().Unless(OptTextAssetBinary),
			dsl.Bytes("m_Script").Aligned().When(OptTextAssetBinary),
		).
		MustBuild()
}

func languageSourceAsset() goasset.TypeDescriptor {
	return dsl.Type("LanguageSourceAsset").
		Doc("I2 Localization source asset (MonoBehaviour + LanguageSourceData)").
		Field(
			dsl.Embed("MonoBehaviour"),
			dsl.Ref("mSource", "LanguageSourceData"),
		).
		MustBuild()
}

func languageSourceData() goasset.TypeDescriptor {
	return dsl.Type("LanguageSourceData").
		Doc("I2 Localization terms, languages and Google sync settings").
		Field(
			dsl.Bool("UserAgreesToHaveItOnTheScene").Aligned(),
			dsl.Bool("UserAgreesToHaveItInsideThePluginsFolder").Aligned(),
			dsl.Bool("GoogleLiveSyncIsUptoDate").Aligned(),
			dsl.Array("mTerms", dsl.Ref("", "TermData")),
			dsl.Bool("CaseInsensitiveTerms").Aligned(),
			dsl.Int32("OnMissingTranslation"),
			dsl.String("mTerm_AppName").Aligned(),
			dsl.Array("mLanguages", dsl.Ref("", "LanguageData")),
			dsl.Bool("IgnoreDeviceLanguage").Aligned(),
			dsl.Int32("_AllowUnloadLanguages"),
			dsl.String("Google_WebServiceURL").Aligned(),
			dsl.String("Google_SpreadsheetKey").Aligned(),
			dsl.String("Google_SpreadsheetName").Aligned(),
			dsl.String("Google_LastUpdatedVersion").Aligned(),
			dsl.Int32("GoogleUpdateFrequency"),
			dsl.Int32("GoogleInEditorCheckFrequency"),
			dsl.Int32("GoogleUpdateSynchronization"),
			dsl.Float32("GoogleUpdateDelay"),
			dsl.Array("Assets", dsl.Ref("", "PPtr")),
		).
		MustBuild()
}

func termData() goasset.TypeDescriptor {
	return dsl.Type("TermData").
		Doc("one localized term").
		Option(OptTermDescription, OptLanguagesTouch).
		Field(
			dsl.String("Term").Aligned(),
			dsl.Int32("TermType"),
			dsl.String("Description").Aligned().When(OptTermDescription),
			dsl.Array("Languages", dsl.String("").Aligned()),
			dsl.Array("Flags", dsl.Uint8("")).Aligned(),
			dsl.Array("Languages_Touch", dsl.String("").Aligned()).When(OptLanguagesTouch),
		).
		MustBuild()
}

func languageData() goasset.TypeDescriptor {
	return dsl.Type("LanguageData").
		Doc("language name, code and flags").
		Field(
			dsl.String("Name").Aligned(),
			dsl.String("Code").Aligned(),
			dsl.Uint8("Flags").Aligned(),
		).
		MustBuild()
}
