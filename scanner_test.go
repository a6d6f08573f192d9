package polidi_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/polidi"
	"github.com/byte4ever/polidi/policy"
)

type pair struct {
	impl  reflect.Type
	param reflect.Type
}

func pairs(descs []polidi.Descriptor) []pair {
	out := make([]pair, 0, len(descs))
	for _, d := range descs {
		out = append(out, pair{impl: d.Impl, param: d.Param})
	}

	return out
}

func TestScanBuilders(t *testing.T) {
	got := pairs(polidi.ScanBuilders(coreModule()))

	assert.ElementsMatch(t, []pair{
		{reflect.TypeFor[A](), polidi.FamilyOf[Alpha]()},
		{reflect.TypeFor[*B](), polidi.FamilyOf[Beta]()},
		{reflect.TypeFor[*D](), polidi.FamilyOf[Delta]()},
	}, got)
}

func TestScanBuildersExcludesAbstractAndGeneric(t *testing.T) {
	m := polidi.NewModule("abstract",
		polidi.Type[*Unfinished](),
		polidi.Type[*Generic[string]](),
		polidi.Type[polidi.Builder](),
		polidi.Type[Alpha](),
		polidi.Type[int](),
	)

	assert.Empty(t, polidi.ScanBuilders(m))
	assert.Empty(t, polidi.ScanConfigurators(m))
}

func TestScanBuildersMultipleFamilies(t *testing.T) {
	got := pairs(polidi.ScanBuilders(polidi.NewModule("multi", polidi.Type[*Multi]())))

	assert.Equal(t, []pair{
		{reflect.TypeFor[*Multi](), polidi.FamilyOf[Epsilon]()},
		{reflect.TypeFor[*Multi](), polidi.FamilyOf[Zeta]()},
	}, got)
}

func TestScanBuildersFollowsEmbedding(t *testing.T) {
	got := pairs(polidi.ScanBuilders(polidi.NewModule("embedded",
		polidi.Type[*Derived](),
		polidi.Type[*Twice](),
	)))

	assert.Equal(t, []pair{
		{reflect.TypeFor[*Derived](), polidi.FamilyOf[Eta]()},
		{reflect.TypeFor[*Twice](), polidi.FamilyOf[Eta]()},
	}, got, "Twice reaches Eta twice but is reported once")
}

func TestScanBuildersDeduplicatesCandidates(t *testing.T) {
	m := polidi.NewModule("dup", polidi.Type[A](), polidi.Type[A]())

	assert.Len(t, polidi.ScanBuilders(m), 1)
}

func TestScanEmptyModule(t *testing.T) {
	assert.Empty(t, polidi.ScanBuilders(polidi.NewModule("empty")))
	assert.Empty(t, polidi.ScanBuilders(nil))
	assert.Empty(t, polidi.ScanConfigurators(nil))
}

func TestScanConfigurators(t *testing.T) {
	m := polidi.NewModule("configurators",
		polidi.Type[*ProcessorConfigurator](),
		polidi.Type[SecondRetryConfigurator](),
		polidi.Type[NotAConfigurator](),
		polidi.Type[polidi.ConfiguratorFunc[*policy.RetryPolicy]](),
		polidi.Type[*ProcessorConfigurator](),
	)

	retry := reflect.TypeFor[*policy.RetryPolicy]()
	assert.Equal(t, []pair{
		{reflect.TypeFor[*ProcessorConfigurator](), retry},
		{reflect.TypeFor[SecondRetryConfigurator](), retry},
	}, pairs(polidi.ScanConfigurators(m)))
}

func TestTypeInstantiates(t *testing.T) {
	v, err := polidi.Type[*B]().New()
	require.NoError(t, err)
	require.IsType(t, &B{}, v)

	first, _ := polidi.Type[*B]().New()
	assert.NotSame(t, v, first, "each call allocates")

	w, err := polidi.Type[A]().New()
	require.NoError(t, err)
	assert.Equal(t, A{}, w)
}

func TestModuleCandidatesAreCopied(t *testing.T) {
	m := polidi.NewModule("copy", polidi.Type[A]())

	c := m.Candidates()
	c[0] = polidi.Type[*B]()

	assert.Equal(t, reflect.TypeFor[A](), m.Candidates()[0].Type)
	assert.Equal(t, "copy", m.Name())
}
