package engine

import (
	"fmt"

	"github.com/vk/chainprobe/internal/contract"
	"github.com/vk/chainprobe/internal/runtime"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// checkArgs validates the supplied arguments against the entry point's
// declared parameters. Every declared parameter must be present and
// convertible to its type; unknown argument names are rejected.
func checkArgs(ep contract.EntryPoint, args runtime.Args) error {
	declared := make(map[string]cty.Type, len(ep.Params))
	for _, param := range ep.Params {
		declared[param.Name] = param.Type

		value, ok := args[param.Name]
		if !ok {
			return fmt.Errorf("missing required argument %q", param.Name)
		}
		if _, err := convert.Convert(value, param.Type); err != nil {
			return fmt.Errorf("argument %q: %w", param.Name, err)
		}
	}
	for name := range args {
		if _, ok := declared[name]; !ok {
			return fmt.Errorf("unexpected argument %q", name)
		}
	}
	return nil
}

// checkReturn validates a handler's result against the entry point's
// declared return type. cty.NilType declares a unit entry point, which must
// produce no value.
func checkReturn(ep contract.EntryPoint, result cty.Value) (cty.Value, error) {
	if ep.Returns == cty.NilType {
		if result.Type() != cty.NilType {
			return cty.NilVal, fmt.Errorf("entry point %q is unit but returned a value", ep.Name)
		}
		return cty.NilVal, nil
	}
	converted, err := convert.Convert(result, ep.Returns)
	if err != nil {
		return cty.NilVal, fmt.Errorf("entry point %q return value: %w", ep.Name, err)
	}
	return converted, nil
}
