// Package modelmapper maps between independently defined object graphs by matching their
// members by name.
//
// Member names are split into tokens, normalized and compared under a matching strategy,
// so a destination field CustomerAddressCity is filled from Customer.Address.City without
// any declaration. Each matched pair gets a converter from the configured chain, and the
// resulting plan, a TypeMap, is built once per type pair and configuration and cached.
//
// # Mapping
//
//	mm := modelmapper.New()
//
//	var dto OrderDTO
//	if err := mm.Map(order, &dto); err != nil {
//	    return err
//	}
//
//	dto, err := modelmapper.MapTo[OrderDTO](mm, order)
//
// # Explicit declarations
//
// Declarations pin what matching cannot find, or finds ambiguously:
//
//	_, err := mm.CreateTypeMap(reflect.TypeFor[Order](), reflect.TypeFor[Summary](),
//	    modelmapper.Declare("Customer.LastName", "Buyer"),
//	    modelmapper.Declare("ID", "Ref").Using(convert.MustFunc(formatRef)),
//	    modelmapper.Skip("Notes"),
//	)
//
// The same declarations can be kept in YAML files and registered with LoadMappings; see
// cmd/mapcheck for validating such files.
//
// # Configuration
//
// Behavior is controlled by a config.Configuration passed with WithConfiguration. TypeMaps
// hold a snapshot of the configuration they were built with, so changing it only affects
// maps built afterwards.
//
// # Errors
//
// Failures match the sentinels ErrInvalidArgument, ErrAmbiguousMapping, ErrConversion,
// ErrProvisioning and ErrUnmapped through errors.Is; details are reachable with errors.As
// on the typed errors of package mapperrors.
package modelmapper
