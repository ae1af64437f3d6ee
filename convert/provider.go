package convert

import "reflect"

// ProvisionRequest asks for a destination instance.
type ProvisionRequest struct {
	Type   reflect.Type  // requested type, never a pointer
	Source reflect.Value // source value the instance will be populated from
	Path   string        // destination path, empty for the root
}

// Provider supplies destination instances. Returning an invalid value with a nil error
// falls back to reflect.New.
type Provider interface {
	Provide(req ProvisionRequest) (reflect.Value, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(req ProvisionRequest) (reflect.Value, error)

func (f ProviderFunc) Provide(req ProvisionRequest) (reflect.Value, error) {
	return f(req)
}

// SourceInterceptor observes or substitutes source values after they are read and before
// conditions and conversion run.
type SourceInterceptor interface {
	Intercept(ctx *Context, value reflect.Value) reflect.Value
}

// InterceptorFunc adapts a function to SourceInterceptor.
type InterceptorFunc func(ctx *Context, value reflect.Value) reflect.Value

func (f InterceptorFunc) Intercept(ctx *Context, value reflect.Value) reflect.Value {
	return f(ctx, value)
}
