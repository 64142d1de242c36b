package unity_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goasset "github.com/reoring/goasset"
	"github.com/reoring/goasset/unity"
)

// le assembles little-endian fixtures.
type le struct{ bytes.Buffer }

func (b *le) i32(v int32) *le { _ = binary.Write(&b.Buffer, binary.LittleEndian, v); return b }
func (b *le) i64(v int64) *le { _ = binary.Write(&b.Buffer, binary.LittleEndian, v); return b }
func (b *le) f32(v float32) *le {
	_ = binary.Write(&b.Buffer, binary.LittleEndian, math.Float32bits(v))
	return b
}
func (b *le) u8(v uint8) *le { b.WriteByte(v); return b }
func (b *le) pad() *le {
	for b.Len()%4 != 0 {
		b.WriteByte(0)
	}
	return b
}
func (b *le) str(s string) *le {
	b.i32(int32(len(s)))
	b.WriteString(s)
	return b.pad()
}
func (b *le) boolean(v bool) *le {
	if v {
		b.u8(1)
	} else {
		b.u8(0)
	}
	return b.pad()
}

func resolve(t *testing.T, cfg goasset.Config, typ string) *goasset.Codec {
	t.Helper()
	reg, err := unity.RegisterTypes(cfg)
	require.NoError(t, err)
	c, err := goasset.NewResolver(reg).Resolve(typ)
	require.NoError(t, err)
	return c
}

func roundTrip(t *testing.T, c *goasset.Codec, raw []byte) goasset.Value {
	t.Helper()
	v, err := c.DecodeBytes(raw)
	require.NoError(t, err)
	back, err := c.EncodeBytes(v)
	require.NoError(t, err)
	assert.Equal(t, raw, back, "re-encoded bytes differ")
	return v
}

func TestCatalog_AllTypesResolveWithEmptyConfig(t *testing.T) {
	reg, err := unity.RegisterTypes(goasset.Config{})
	require.NoError(t, err)
	r := goasset.NewResolver(reg)
	names := reg.Names()
	assert.ElementsMatch(t, []string{"LanguageData", "LanguageSourceAsset", "LanguageSourceData", "MonoBehaviour", "PPtr", "TermData", "TextAsset"}, names)
	for _, n := range names {
		_, err := r.Resolve(n)
		assert.NoError(t, err, n)
	}
}

func TestPPtr_VersionGates(t *testing.T) {
	latest := resolve(t, nil, "PPtr")
	v := roundTrip(t, latest, new(le).i32(1).i64(42).Bytes())
	assert.True(t, goasset.Equal(goasset.Fields("m_FileID", goasset.Int(1), "m_PathID", goasset.Int(42)), v), v.String())

	old := resolve(t, goasset.Config{"engineVersion": "4.7.2f1"}, "PPtr")
	v = roundTrip(t, old, new(le).i32(0).i32(-3).Bytes())
	pid, _ := v.Get("m_PathID")
	i, _ := pid.Int()
	assert.Equal(t, int64(-3), i)

	_, err := old.DecodeBytes(new(le).i32(1).i64(42).Bytes())
	assert.ErrorIs(t, err, goasset.ErrMalformedInput, "int32 layout leaves trailing bytes")
}

func TestMonoBehaviour_Layout(t *testing.T) {
	raw := new(le).
		i32(0).i64(5).
		u8(1).pad().
		i32(1).i64(7).
		str("abc").Bytes()
	require.Len(t, raw, 36)
	v := roundTrip(t, resolve(t, nil, "MonoBehaviour"), raw)
	assert.Equal(t, []string{"m_GameObject", "m_Enabled", "m_Script", "m_Name"}, v.Map().Keys())
	name, _ := v.Get("m_Name")
	s, _ := name.Text()
	assert.Equal(t, "abc", s)
}

func TestMonoBehaviour_NonZeroPaddingIsMalformed(t *testing.T) {
	raw := new(le).i32(0).i64(5).u8(1).Bytes()
	raw = append(raw, 0, 9, 0)
	raw = append(raw, new(le).i32(1).i64(7).str("").Bytes()...)
	_, err := resolve(t, nil, "MonoBehaviour").DecodeBytes(raw)
	require.ErrorIs(t, err, goasset.ErrMalformedInput)
	e, _ := goasset.AsError(err)
	assert.Equal(t, "m_Enabled", e.Path)
	assert.Equal(t, int64(13), e.Offset)
}

func TestTextAsset_BinaryOption(t *testing.T) {
	raw := new(le).str("notes").i32(3).Bytes()
	raw = append(raw, 0xff, 0x00, 0xfe, 0)

	_, err := resolve(t, nil, "TextAsset").DecodeBytes(raw)
	assert.ErrorIs(t, err, goasset.ErrMalformedInput, "0xff is not UTF-8")

	v := roundTrip(t, resolve(t, goasset.Config{unity.OptTextAssetBinary: "true"}, "TextAsset"), raw)
	script, _ := v.Get("m_Script")
	b, ok := script.Blob()
	require.True(t, ok)
	assert.Equal(t, []byte{0xff, 0x00, 0xfe}, b)
}

func TestTextAsset_BadFlagIsUnsupported(t *testing.T) {
	reg, err := unity.RegisterTypes(goasset.Config{unity.OptTextAssetBinary: "perhaps"})
	require.NoError(t, err)
	_, err = goasset.NewResolver(reg).Resolve("TextAsset")
	assert.ErrorIs(t, err, goasset.ErrUnsupportedConfiguration)
}

func languageSource(t *testing.T) []byte {
	t.Helper()
	b := new(le)
	// MonoBehaviour header
	b.i32(0).i64(0).u8(1).pad().i32(2).i64(11400).str("I2Languages")
	// LanguageSourceData
	b.boolean(true).boolean(false).boolean(true)
	b.i32(2)
	b.str("Menu/Start").i32(0)
	b.i32(2).str("Start").str("Démarrer")
	b.i32(2).u8(0).u8(1).pad()
	b.str("Menu/Quit").i32(0)
	b.i32(2).str("Quit").str("")
	b.i32(0).pad()
	b.boolean(false)
	b.i32(1)
	b.str("")
	b.i32(2)
	b.str("English").str("en").u8(0).pad()
	b.str("French").str("fr").u8(1).pad()
	b.boolean(false)
	b.i32(0)
	b.str("https://script.google.com/x").str("key").str("Sheet").str("0")
	b.i32(0).i32(1).i32(2)
	b.f32(0.5)
	b.i32(1).i32(0).i64(77)
	return b.Bytes()
}

func TestLanguageSourceAsset_RoundTrip(t *testing.T) {
	c := resolve(t, nil, "LanguageSourceAsset")
	v := roundTrip(t, c, languageSource(t))

	keys := v.Map().Keys()
	assert.Equal(t, []string{"m_GameObject", "m_Enabled", "m_Script", "m_Name", "mSource"}, keys)

	src, _ := v.Get("mSource")
	terms, _ := src.Get("mTerms")
	require.Equal(t, 2, terms.Len())
	first, _ := terms.Index(0)
	langs, _ := first.Get("Languages")
	fr, _ := langs.Index(1)
	s, _ := fr.Text()
	assert.Equal(t, "Démarrer", s)

	second, _ := terms.Index(1)
	flags, _ := second.Get("Flags")
	assert.Equal(t, goasset.KindList, flags.Kind())
	assert.Equal(t, 0, flags.Len())

	delay, _ := src.Get("GoogleUpdateDelay")
	f, _ := delay.Float()
	assert.Equal(t, 0.5, f)

	// value-exact through the JSON boundary
	js, err := v.MarshalJSON()
	require.NoError(t, err)
	parsed, err := goasset.ParseJSON(js)
	require.NoError(t, err)
	back, err := c.EncodeBytes(c.Normalize(parsed))
	require.NoError(t, err)
	assert.Equal(t, languageSource(t), back)
}

func TestLanguageSourceAsset_TruncationNamesField(t *testing.T) {
	c := resolve(t, nil, "LanguageSourceAsset")
	raw := languageSource(t)
	for n := 0; n < len(raw); n++ {
		_, err := c.DecodeBytes(raw[:n])
		require.ErrorIs(t, err, goasset.ErrTruncatedInput, "prefix %d", n)
		e, _ := goasset.AsError(err)
		assert.NotEmpty(t, e.Path, "prefix %d", n)

		_, err = c.Decode(bytes.NewReader(raw[:n]))
		require.ErrorIs(t, err, goasset.ErrTruncatedInput, "streamed prefix %d", n)
	}
}

func TestRegistry_SharedAcrossGoroutines(t *testing.T) {
	reg, err := unity.RegisterTypes(nil)
	require.NoError(t, err)
	raw := languageSource(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := goasset.NewResolver(reg).Resolve("LanguageSourceAsset")
			if err != nil {
				errs <- err
				return
			}
			v, err := c.Decode(bytes.NewReader(raw))
			if err != nil {
				errs <- err
				return
			}
			back, err := c.EncodeBytes(v)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(raw, back) {
				errs <- fmt.Errorf("re-encoded %d bytes differ", len(back))
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestTermData_EditorDescription(t *testing.T) {
	raw := new(le).str("T").i32(1).str("a note").i32(0).i32(0).Bytes()
	c := resolve(t, goasset.Config{unity.OptTermDescription: true}, "TermData")
	v := roundTrip(t, c, raw)
	assert.True(t, v.Map().Has("Description"))

	plain := resolve(t, nil, "TermData")
	_, err := plain.DecodeBytes(raw)
	assert.Error(t, err)
}

func TestFieldOverride_OnlyAffectsNamedType(t *testing.T) {
	cfg := goasset.Config{"fields.LanguageData.Flags": "uint32"}
	changed := resolve(t, cfg, "LanguageData")
	v := roundTrip(t, changed, new(le).str("English").str("en").i32(7).Bytes())
	flags, _ := v.Get("Flags")
	i, _ := flags.Int()
	assert.Equal(t, int64(7), i)

	raw := new(le).i32(0).i64(5).u8(1).pad().i32(1).i64(7).str("abc").Bytes()
	roundTrip(t, resolve(t, cfg, "MonoBehaviour"), raw)
}

func TestTypeOverride_ReplacesLayout(t *testing.T) {
	cfg := goasset.Config{"types.LanguageData": `
- {name: Code, kind: string, align: default}
- {name: Flags, kind: uint8, align: default}
`}
	c := resolve(t, cfg, "LanguageData")
	v := roundTrip(t, c, new(le).str("en").u8(3).pad().Bytes())
	assert.Equal(t, []string{"Code", "Flags"}, v.Map().Keys())
}
