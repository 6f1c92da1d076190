package nki

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksisuo/multisample"
)

func TestDocumentRoundTripBothDialects(t *testing.T) {
	for _, variant := range []Variant{Kontakt1, Kontakt2} {
		spec := variantSpecs[variant]
		want := fixtureInstrument()

		doc := buildDocument([]*multisample.Instrument{want}, spec, "Grand Piano Samples", multisample.NopNotifier{})
		text, err := doc.WriteToBytes()
		require.NoError(t, err)

		got, err := parsePrograms(text, spec)
		require.NoError(t, err, spec.name)
		require.Len(t, got, 1)
		assert.Equal(t, want, got[0], spec.name)
	}
}

func TestDialectVocabulary(t *testing.T) {
	instr := fixtureInstrument()
	doc := buildDocument([]*multisample.Instrument{instr}, variantSpecs[Kontakt1], "", multisample.NopNotifier{})
	text, err := doc.WriteToBytes()
	require.NoError(t, err)
	assert.Contains(t, string(text), "<NiSS_Bank>")
	assert.Contains(t, string(text), "targetParam")
	assert.NotContains(t, string(text), "K2_")

	doc = buildDocument([]*multisample.Instrument{instr}, variantSpecs[Kontakt2], "", multisample.NopNotifier{})
	text, err = doc.WriteToBytes()
	require.NoError(t, err)
	assert.Contains(t, string(text), "<K2_Container>")
	assert.Contains(t, string(text), "targetParameter")
	assert.NotContains(t, string(text), "NiSS_")
}

func TestParseStripsByteOrderMark(t *testing.T) {
	text := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`<NiSS_Bank><NiSS_Program name="A"/></NiSS_Bank>`)...)
	got, err := parsePrograms(text, variantSpecs[Kontakt1])
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Name)
}

func TestParseBareProgramElement(t *testing.T) {
	text := []byte(`<K2_Program name="Solo"><K2_Group name="g"><K2_Zone file="a.wav"/></K2_Group></K2_Program>`)
	got, err := parsePrograms(text, variantSpecs[Kontakt2])
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Solo", got[0].Name)
	require.Len(t, got[0].Groups, 1)
	require.Len(t, got[0].Groups[0].Zones, 1)
	assert.Equal(t, "a.wav", got[0].Groups[0].Zones[0].SamplePath)
}

func TestParseUnexpectedTopLevel(t *testing.T) {
	_, err := parsePrograms([]byte(`<Banana/>`), variantSpecs[Kontakt2])
	assert.ErrorContains(t, err, "unexpected top-level element")
	_, err = parsePrograms([]byte(`not xml at all`), variantSpecs[Kontakt2])
	assert.Error(t, err)
}

func TestParseZoneDefaults(t *testing.T) {
	text := []byte(`<K2_Container><K2_Program name="P"><K2_Group name="g"><K2_Zone name="z" file="a.wav"/></K2_Group></K2_Program></K2_Container>`)
	got, err := parsePrograms(text, variantSpecs[Kontakt2])
	require.NoError(t, err)
	zone := got[0].Groups[0].Zones[0]

	want := multisample.NewZone("z")
	want.SamplePath = "a.wav"
	want.KeyRoot = 60
	assert.Equal(t, want, zone)
}

func TestMultipleLoopsWarnOnWrite(t *testing.T) {
	instr := fixtureInstrument()
	zone := &instr.Groups[0].Zones[0]
	zone.Loops = append(zone.Loops, multisample.Loop{Start: 1, End: 2})

	collector := &multisample.Collector{}
	doc := buildDocument([]*multisample.Instrument{instr}, variantSpecs[Kontakt2], "", collector)
	text, err := doc.WriteToBytes()
	require.NoError(t, err)
	require.Len(t, collector.Warnings, 1)
	assert.Contains(t, collector.Warnings[0], "only the first is written")

	got, err := parsePrograms(text, variantSpecs[Kontakt2])
	require.NoError(t, err)
	assert.Len(t, got[0].Groups[0].Zones[0].Loops, 1)
}

func TestCutoffModulatorWithoutFilterIsIgnored(t *testing.T) {
	text := []byte(`<K2_Container><K2_Program name="P"><K2_Group name="g"><K2_Zone name="z" file="a.wav">` +
		`<K2_Modulator><K2_Value name="targetParameter" value="cutoffValue"/><K2_Value name="intensityValue" value="1"/></K2_Modulator>` +
		`</K2_Zone></K2_Group></K2_Program></K2_Container>`)
	got, err := parsePrograms(text, variantSpecs[Kontakt2])
	require.NoError(t, err)
	assert.Nil(t, got[0].Groups[0].Zones[0].Filter)
}

func TestModulatorWithoutTargetIsSkipped(t *testing.T) {
	text := []byte(`<K2_Container><K2_Program name="P"><K2_Group name="g"><K2_Zone name="z" file="a.wav">` +
		`<K2_Modulator><K2_Value name="intensityValue" value="7"/></K2_Modulator>` +
		`</K2_Zone></K2_Group></K2_Program></K2_Container>`)
	got, err := parsePrograms(text, variantSpecs[Kontakt2])
	require.NoError(t, err)
	zone := got[0].Groups[0].Zones[0]
	assert.Equal(t, float64(1), zone.AmplitudeModulator.Depth)
	assert.Equal(t, float64(0), zone.PitchModulator.Depth)
}

func TestEmptyGroupIsOmitted(t *testing.T) {
	instr := &multisample.Instrument{
		Name:   "P",
		Groups: []multisample.Group{{Name: "empty"}},
	}
	doc := buildDocument([]*multisample.Instrument{instr}, variantSpecs[Kontakt2], "", multisample.NopNotifier{})
	text, err := doc.WriteToBytes()
	require.NoError(t, err)
	assert.NotContains(t, string(text), "K2_Group")
}
