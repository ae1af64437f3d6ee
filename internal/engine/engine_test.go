package engine_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilors/modelmapper/config"
	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/internal/engine"
	"github.com/kamilors/modelmapper/internal/plan"
	"github.com/kamilors/modelmapper/mapperrors"
)

type address struct {
	Street string
	City   string
}

type customer struct {
	Name    string
	Address *address
}

type ship struct {
	ID       int
	Customer *customer
}

type addressView struct{ City string }

type customerView struct {
	Name    string
	Address *addressView
}

type shipView struct {
	ID       int
	Customer *customerView
}

type person struct {
	ID   int
	Name string
}

type basket struct{ Items []int }

type profile struct {
	Nick *string
	Age  int
}

type inner struct{ Value string }

type holder struct{ Inner *inner }

type wide struct {
	Small int64
	Other int
}

type narrow struct {
	Small int8
	Other int
}

type envelope struct{ Count any }

type envelopeView struct{ Count int64 }

type cart struct{ Ships []ship }

type cartView struct{ Ships []shipView }

type fixture struct {
	store  *plan.Store
	engine *engine.Engine
}

func newFixture() fixture {
	s := plan.NewStore(plan.Hooks{})

	return fixture{store: s, engine: engine.New(s)}
}

// execute maps src into existing, or into a provisioned destination when existing is nil.
func execute[D any](t *testing.T, f fixture, cfg *config.Configuration, src any, existing *D) (D, error) {
	t.Helper()

	sv := reflect.ValueOf(src)

	tm, err := f.store.TypeMap(cfg, sv.Type(), reflect.TypeFor[D](), sv)
	require.NoError(t, err)

	var dv reflect.Value
	if existing != nil {
		dv = reflect.ValueOf(existing)
	}

	var out D

	v, err := f.engine.Execute(sv, dv, tm)
	if v.IsValid() {
		out = v.Interface().(D)
	}

	return out, err
}

func ptr[T any](v T) *T {
	return &v
}

func TestExecuteNested(t *testing.T) {
	src := ship{ID: 1, Customer: &customer{Name: "Ada", Address: &address{Street: "Main", City: "Oslo"}}}

	out, err := execute[shipView](t, newFixture(), config.New(), src, nil)
	require.NoError(t, err)

	want := shipView{ID: 1, Customer: &customerView{Name: "Ada", Address: &addressView{City: "Oslo"}}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteAbsentIntermediates(t *testing.T) {
	f := newFixture()

	out, err := execute[shipView](t, f, config.New(), ship{ID: 2, Customer: &customer{Name: "Ada"}}, nil)
	require.NoError(t, err)
	require.NotNil(t, out.Customer)
	assert.Equal(t, "Ada", out.Customer.Name)
	assert.Nil(t, out.Customer.Address)

	out, err = execute[shipView](t, f, config.New(), ship{ID: 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, out.ID)
	assert.Nil(t, out.Customer)
}

func TestExecuteReusesDestinationPointers(t *testing.T) {
	existing := &shipView{ID: 9, Customer: &customerView{Name: "old"}}
	keep := existing.Customer

	out, err := execute(t, newFixture(), config.New(), ship{ID: 1, Customer: &customer{Name: "new"}}, existing)
	require.NoError(t, err)

	assert.Equal(t, 1, out.ID)
	assert.Same(t, keep, out.Customer)
	assert.Equal(t, "new", out.Customer.Name)
}

func TestExecuteIsIdempotent(t *testing.T) {
	f := newFixture()
	cfg := config.New()
	src := ship{ID: 4, Customer: &customer{Name: "Ada", Address: &address{City: "Oslo"}}}

	first, err := execute[shipView](t, f, cfg, src, nil)
	require.NoError(t, err)

	second, err := execute[shipView](t, f, cfg, src, nil)
	require.NoError(t, err)

	assert.True(t, cmp.Equal(first, second))
	assert.NotSame(t, first.Customer, second.Customer)
	assert.Equal(t, "Oslo", src.Customer.Address.City)
}

func TestExecuteCollectionsMerge(t *testing.T) {
	tests := []struct {
		name  string
		merge bool
		want  []int
	}{
		{name: "merge keeps the tail", merge: true, want: []int{1, 2, 9, 9, 9}},
		{name: "replace", merge: false, want: []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New().SetCollectionsMergeEnabled(tt.merge)
			existing := &basket{Items: []int{9, 9, 9, 9, 9}}

			out, err := execute(t, newFixture(), cfg, basket{Items: []int{1, 2}}, existing)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Items)
		})
	}
}

func TestExecuteCollectionOfStructs(t *testing.T) {
	src := cart{Ships: []ship{{ID: 1, Customer: &customer{Name: "Ada"}}, {ID: 2}}}

	out, err := execute[cartView](t, newFixture(), config.New(), src, nil)
	require.NoError(t, err)

	want := cartView{Ships: []shipView{{ID: 1, Customer: &customerView{Name: "Ada"}}, {ID: 2}}}
	assert.Equal(t, want, out)
}

func TestExecuteSkipNull(t *testing.T) {
	tests := []struct {
		name     string
		skipNull bool
		want     *string
	}{
		{name: "skip keeps the destination", skipNull: true, want: ptr("kept")},
		{name: "null clears the destination", skipNull: false, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New().SetSkipNullEnabled(tt.skipNull)
			existing := &profile{Nick: ptr("kept"), Age: 1}

			out, err := execute(t, newFixture(), cfg, profile{Age: 30}, existing)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Nick)
			assert.Equal(t, 30, out.Age)
		})
	}
}

func TestExecuteDeepCopy(t *testing.T) {
	src := holder{Inner: &inner{Value: "x"}}

	shallow, err := execute[holder](t, newFixture(), config.New(), src, nil)
	require.NoError(t, err)
	assert.Same(t, src.Inner, shallow.Inner)

	deep, err := execute[holder](t, newFixture(), config.New().SetDeepCopyEnabled(true), src, nil)
	require.NoError(t, err)
	assert.NotSame(t, src.Inner, deep.Inner)
	assert.Equal(t, src, deep)
}

func TestExecuteProvider(t *testing.T) {
	var paths []string

	cfg := config.New().SetProvider(convert.ProviderFunc(func(req convert.ProvisionRequest) (reflect.Value, error) {
		paths = append(paths, req.Path)

		if req.Type == reflect.TypeFor[shipView]() {
			return reflect.ValueOf(&shipView{ID: -1}), nil
		}

		return reflect.Value{}, nil
	}))

	out, err := execute[shipView](t, newFixture(), cfg, ship{ID: 5, Customer: &customer{Name: "Ada"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, out.ID)
	assert.Equal(t, "Ada", out.Customer.Name)
	assert.Equal(t, []string{"", "Customer"}, paths)
}

func TestExecuteProviderFailure(t *testing.T) {
	boom := errors.New("no instances left")

	for _, collect := range []bool{false, true} {
		cfg := config.New().
			SetErrorCollectionEnabled(collect).
			SetProvider(convert.ProviderFunc(func(req convert.ProvisionRequest) (reflect.Value, error) {
				if req.Type == reflect.TypeFor[customerView]() {
					return reflect.Value{}, boom
				}

				return reflect.Value{}, nil
			}))

		_, err := execute[shipView](t, newFixture(), cfg, ship{ID: 1, Customer: &customer{Name: "Ada"}}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapperrors.ErrProvisioning)
		assert.ErrorIs(t, err, boom)
	}
}

func TestExecuteConversionFailure(t *testing.T) {
	_, err := execute[narrow](t, newFixture(), config.New(), wide{Small: 1000, Other: 7}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, mapperrors.ErrConversion)

	var me *mapperrors.MappingError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, mapperrors.OpConvert, me.Op)
	assert.Equal(t, "Small", me.SourcePath)
	assert.Equal(t, "Small", me.DestinationPath)
}

func TestExecuteErrorCollection(t *testing.T) {
	cfg := config.New().SetErrorCollectionEnabled(true)

	out, err := execute[narrow](t, newFixture(), cfg, wide{Small: 1000, Other: 7}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, mapperrors.ErrConversion)

	// the remaining mappings still ran
	assert.Equal(t, 7, out.Other)
	assert.Zero(t, out.Small)
}

func TestExecuteConditions(t *testing.T) {
	t.Run("property condition", func(t *testing.T) {
		cfg := config.New().SetPropertyCondition(convert.MustExpr(`sourcePath != "ID"`))

		out, err := execute(t, newFixture(), cfg, person{ID: 1, Name: "Ada"}, &person{ID: 9})
		require.NoError(t, err)
		assert.Equal(t, person{ID: 9, Name: "Ada"}, out)
	})

	t.Run("declared condition", func(t *testing.T) {
		f := newFixture()
		cfg := config.New()
		pt := reflect.TypeFor[person]()

		_, err := f.store.Define(cfg, pt, pt, plan.Registration{Declarations: []plan.Declaration{
			{Source: "Name", Destination: "Name", Condition: convert.MustExpr(`source != ""`)},
		}})
		require.NoError(t, err)

		out, err := execute(t, f, cfg, person{ID: 1}, &person{Name: "kept"})
		require.NoError(t, err)
		assert.Equal(t, person{ID: 1, Name: "kept"}, out)
	})
}

func TestExecuteInterceptor(t *testing.T) {
	cfg := config.New().SetResolveSourceValueInterceptor(convert.InterceptorFunc(
		func(ctx *convert.Context, v reflect.Value) reflect.Value {
			if ctx.SourcePath == "Name" {
				return reflect.ValueOf(strings.ToUpper(v.String()))
			}

			return v
		}))

	out, err := execute[person](t, newFixture(), cfg, person{ID: 1, Name: "ada"}, nil)
	require.NoError(t, err)
	assert.Equal(t, person{ID: 1, Name: "ADA"}, out)
}

func TestExecuteDynamicSource(t *testing.T) {
	out, err := execute[envelopeView](t, newFixture(), config.New(), envelope{Count: int32(3)}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Count)
}

func TestExecuteValueReaderAndWriter(t *testing.T) {
	f := newFixture()

	p, err := execute[person](t, f, config.New(), map[string]any{"ID": 7, "Name": "Ada", "Extra": true}, nil)
	require.NoError(t, err)
	assert.Equal(t, person{ID: 7, Name: "Ada"}, p)

	m, err := execute[map[string]any](t, f, config.New(), person{ID: 7, Name: "Ada"}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ID": 7, "Name": "Ada"}, m)
}

func TestConvert(t *testing.T) {
	f := newFixture()
	src := []ship{{ID: 1, Customer: &customer{Name: "Ada"}}}

	out, err := f.engine.Convert(config.New(), reflect.ValueOf(src), reflect.Value{}, reflect.TypeFor[[]shipView]())
	require.NoError(t, err)
	assert.Equal(t, []shipView{{ID: 1, Customer: &customerView{Name: "Ada"}}}, out.Interface())

	out, err = f.engine.Convert(config.New(), reflect.ValueOf(&src[0]), reflect.Value{}, reflect.TypeFor[*shipView]())
	require.NoError(t, err)
	assert.Equal(t, &shipView{ID: 1, Customer: &customerView{Name: "Ada"}}, out.Interface())

	_, err = f.engine.Convert(config.New(), reflect.ValueOf(make(chan int)), reflect.Value{}, reflect.TypeFor[string]())
	assert.ErrorIs(t, err, plan.ErrNoConverter)
}
