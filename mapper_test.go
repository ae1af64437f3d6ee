package modelmapper_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilors/modelmapper"
	"github.com/kamilors/modelmapper/config"
	"github.com/kamilors/modelmapper/convert"
	"github.com/kamilors/modelmapper/matching"
)

type Address struct {
	Street string
	City   string
}

type Customer struct {
	FirstName string
	LastName  string
	Address   Address
}

type Item struct {
	SKU      string
	Quantity int
}

type Order struct {
	ID       int
	Customer Customer
	Items    []Item
}

type ItemDTO struct {
	SKU      string
	Quantity int64
}

type OrderDTO struct {
	ID                  int
	CustomerFirstName   string
	CustomerLastName    string
	CustomerAddressCity string
	Items               []ItemDTO
}

type Summary struct {
	Ref   string
	Buyer string
	City  string
}

type Names struct {
	FullName    string
	FullnameAlt string
}

type FullName struct {
	FullName string
}

func sampleOrder() Order {
	return Order{
		ID: 7,
		Customer: Customer{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Address:   Address{Street: "St James's Square", City: "London"},
		},
		Items: []Item{{SKU: "A-1", Quantity: 2}, {SKU: "B-2", Quantity: 1}},
	}
}

func formatRef(id int) string {
	return fmt.Sprintf("#%d", id)
}

func TestMapFlattening(t *testing.T) {
	mm := modelmapper.New()

	dto, err := modelmapper.MapTo[OrderDTO](mm, sampleOrder())
	require.NoError(t, err)

	want := OrderDTO{
		ID:                  7,
		CustomerFirstName:   "Ada",
		CustomerLastName:    "Lovelace",
		CustomerAddressCity: "London",
		Items:               []ItemDTO{{SKU: "A-1", Quantity: 2}, {SKU: "B-2", Quantity: 1}},
	}
	if diff := cmp.Diff(want, dto); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMapIdentity(t *testing.T) {
	mm := modelmapper.New(modelmapper.WithConfiguration(config.New().SetDeepCopyEnabled(true)))
	src := sampleOrder()

	out, err := modelmapper.MapTo[Order](mm, &src)
	require.NoError(t, err)

	assert.True(t, cmp.Equal(src, out), spew.Sdump(out))

	out.Items[0].SKU = "changed"
	assert.Equal(t, "A-1", src.Items[0].SKU)
}

func TestMapPointerDestination(t *testing.T) {
	mm := modelmapper.New()

	var dto *OrderDTO
	require.NoError(t, mm.Map(sampleOrder(), &dto))
	require.NotNil(t, dto)
	assert.Equal(t, "London", dto.CustomerAddressCity)
}

func TestMapArguments(t *testing.T) {
	mm := modelmapper.New()

	var dto OrderDTO

	tests := []struct {
		name string
		src  any
		dst  any
	}{
		{name: "nil source", src: nil, dst: &dto},
		{name: "nil pointer source", src: (*Order)(nil), dst: &dto},
		{name: "nil destination", src: sampleOrder(), dst: nil},
		{name: "non-pointer destination", src: sampleOrder(), dst: dto},
		{name: "nil pointer destination", src: sampleOrder(), dst: (*OrderDTO)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mm.Map(tt.src, tt.dst)
			require.ErrorIs(t, err, modelmapper.ErrInvalidArgument)

			var argErr *modelmapper.ArgumentError
			assert.ErrorAs(t, err, &argErr)
		})
	}

	_, err := mm.TypeMap(nil, reflect.TypeFor[OrderDTO]())
	assert.ErrorIs(t, err, modelmapper.ErrInvalidArgument)
}

func TestMapAmbiguity(t *testing.T) {
	_, err := modelmapper.MapTo[FullName](modelmapper.New(), Names{FullName: "Ada Lovelace", FullnameAlt: "A. L."})
	require.ErrorIs(t, err, modelmapper.ErrAmbiguousMapping)

	var ambiguity *modelmapper.AmbiguityError
	require.ErrorAs(t, err, &ambiguity)
	assert.Equal(t, "FullName", ambiguity.Destination)

	strict := modelmapper.New(modelmapper.WithConfiguration(config.New().SetMatchingStrategy(matching.Strict)))

	out, err := modelmapper.MapTo[FullName](strict, Names{FullName: "Ada Lovelace", FullnameAlt: "A. L."})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", out.FullName)
}

func TestMapSupersetNameAmbiguity(t *testing.T) {
	type person struct {
		Name      string
		FirstName string
	}

	type badge struct{ Name string }

	src := person{Name: "Ada Lovelace", FirstName: "Ada"}

	_, err := modelmapper.MapTo[badge](modelmapper.New(), src)
	require.ErrorIs(t, err, modelmapper.ErrAmbiguousMapping)

	tests := []struct {
		name string
		cfg  *config.Configuration
		want string
	}{
		{"strict", config.New().SetMatchingStrategy(matching.Strict), "Ada Lovelace"},
		{"ambiguity ignored", config.New().SetAmbiguityIgnored(true), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := modelmapper.MapTo[badge](modelmapper.New(modelmapper.WithConfiguration(tt.cfg)), src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Name)
		})
	}
}

func TestCreateTypeMap(t *testing.T) {
	mm := modelmapper.New()
	src, dst := reflect.TypeFor[Order](), reflect.TypeFor[Summary]()

	tm, err := mm.CreateTypeMap(src, dst,
		modelmapper.Declare("ID", "Ref").Using(convert.MustFunc(formatRef)),
		modelmapper.Declare("Customer.LastName", "Buyer"),
		modelmapper.Skip("City"),
	)
	require.NoError(t, err)
	require.NoError(t, tm.Validate())

	cached, err := mm.TypeMap(src, dst)
	require.NoError(t, err)
	assert.Same(t, tm, cached)

	out := Summary{City: "kept"}
	require.NoError(t, mm.Map(sampleOrder(), &out))
	assert.Equal(t, Summary{Ref: "#7", Buyer: "Lovelace", City: "kept"}, out)

	require.NoError(t, mm.Validate())
}

func TestCreateTypeMapConditions(t *testing.T) {
	mm := modelmapper.New()

	_, err := mm.CreateTypeMap(reflect.TypeFor[Order](), reflect.TypeFor[Summary](),
		modelmapper.Declare("Customer.LastName", "Buyer").When(convert.MustExpr(`source != ""`)),
		modelmapper.Skip("Ref"),
		modelmapper.Skip("City"),
	)
	require.NoError(t, err)

	src := sampleOrder()
	src.Customer.LastName = ""

	out := Summary{Buyer: "kept"}
	require.NoError(t, mm.Map(src, &out))
	assert.Equal(t, "kept", out.Buyer)
}

func TestEmptyTypeMap(t *testing.T) {
	mm := modelmapper.New()

	tm, err := mm.EmptyTypeMap(reflect.TypeFor[Order](), reflect.TypeFor[OrderDTO](),
		modelmapper.Declare("Customer.LastName", "CustomerLastName"))
	require.NoError(t, err)
	require.Len(t, tm.Mappings, 1)

	out, err := modelmapper.MapTo[OrderDTO](mm, sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, OrderDTO{CustomerLastName: "Lovelace"}, out)
}

func TestCreateTypeMapFailureRegistersNothing(t *testing.T) {
	mm := modelmapper.New()

	_, err := mm.CreateTypeMap(reflect.TypeFor[Order](), reflect.TypeFor[Summary](),
		modelmapper.Declare("Customer.Nickname", "Buyer"))
	require.ErrorIs(t, err, modelmapper.ErrInvalidArgument)

	require.NoError(t, mm.Validate(), "no pair was registered")
}

func TestValidateReportsUnmapped(t *testing.T) {
	mm := modelmapper.New()

	_, err := mm.CreateTypeMap(reflect.TypeFor[Order](), reflect.TypeFor[Summary](),
		modelmapper.Declare("Customer.LastName", "Buyer"))
	require.NoError(t, err)

	err = mm.Validate()
	require.ErrorIs(t, err, modelmapper.ErrUnmapped)

	var unmapped *modelmapper.UnmappedError
	require.ErrorAs(t, err, &unmapped)
	assert.Equal(t, []string{"Ref", "City"}, unmapped.Paths)
}

func TestMapConversionError(t *testing.T) {
	type wide struct{ Count int64 }
	type narrow struct{ Count int8 }

	_, err := modelmapper.MapTo[narrow](modelmapper.New(), wide{Count: 1 << 20})
	require.ErrorIs(t, err, modelmapper.ErrConversion)

	var me *modelmapper.MappingError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "Count", me.DestinationPath)
}

func TestMapNonStructValues(t *testing.T) {
	mm := modelmapper.New()

	items, err := modelmapper.MapTo[[]ItemDTO](mm, []Item{{SKU: "A-1", Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, []ItemDTO{{SKU: "A-1", Quantity: 2}}, items)

	n, err := modelmapper.MapTo[int64](mm, int32(12))
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	m, err := modelmapper.MapTo[map[string]int](mm, map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, m)
}

func TestMapValueReaderAndWriter(t *testing.T) {
	mm := modelmapper.New()

	item, err := modelmapper.MapTo[Item](mm, map[string]any{"SKU": "C-3", "Quantity": 4})
	require.NoError(t, err)
	assert.Equal(t, Item{SKU: "C-3", Quantity: 4}, item)

	m, err := modelmapper.MapTo[map[string]any](mm, Item{SKU: "C-3", Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"SKU": "C-3", "Quantity": 4}, m)
}

func TestMapConcurrent(t *testing.T) {
	mm := modelmapper.New()
	src := sampleOrder()

	var wg sync.WaitGroup

	errs := make([]error, 16)
	outs := make([]OrderDTO, 16)

	for i := range errs {
		wg.Add(1)

		go func() {
			defer wg.Done()
			outs[i], errs[i] = modelmapper.MapTo[OrderDTO](mm, src)
		}()
	}

	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, outs[0], outs[i])
	}
}

func TestWarm(t *testing.T) {
	var buf bytes.Buffer

	logger := modelmapper.NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	mm := modelmapper.New(modelmapper.WithLogger(logger))

	require.NoError(t, mm.Warm(context.Background(), modelmapper.PairOf[Order, OrderDTO]()))

	assert.Contains(t, buf.String(), "type map built")
	assert.Contains(t, buf.String(), "modelmapper_test.Item -> modelmapper_test.ItemDTO")

	buf.Reset()

	_, err := modelmapper.TypeMapOf[Order, OrderDTO](mm)
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "warmed maps are cached")
}

func TestWarmFailure(t *testing.T) {
	var buf bytes.Buffer

	mm := modelmapper.New(modelmapper.WithLogger(modelmapper.NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))))

	err := mm.Warm(context.Background(), modelmapper.PairOf[Names, FullName]())
	require.ErrorIs(t, err, modelmapper.ErrAmbiguousMapping)
	assert.Contains(t, buf.String(), "type map build failed")
}

func TestConfigurationCopyLeavesOriginalResolution(t *testing.T) {
	mm := modelmapper.New()

	before, err := modelmapper.TypeMapOf[Order, OrderDTO](mm)
	require.NoError(t, err)

	cp := mm.Configuration().Copy()
	cp.Converters().Clear()

	after, err := modelmapper.TypeMapOf[Order, OrderDTO](mm)
	require.NoError(t, err)
	assert.Same(t, before, after)

	rebuilt, err := modelmapper.TypeMapOf[Order, OrderDTO](modelmapper.New(modelmapper.WithConfiguration(mm.Configuration())))
	require.NoError(t, err)
	require.Len(t, rebuilt.Mappings, len(before.Mappings))

	for i, pm := range before.Mappings {
		assert.Equal(t, pm.Converter, rebuilt.Mappings[i].Converter, pm.String())
	}

	dto, err := modelmapper.MapTo[OrderDTO](mm, sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, []ItemDTO{{SKU: "A-1", Quantity: 2}, {SKU: "B-2", Quantity: 1}}, dto.Items)

	assert.Zero(t, cp.Converters().Len())
	assert.Equal(t, len(convert.Defaults()), mm.Configuration().Converters().Len())
}
