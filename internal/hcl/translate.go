package hcl

import (
	"context"
	"fmt"

	"github.com/vk/chainprobe/internal/config"
	"github.com/vk/chainprobe/internal/contract"
	"github.com/vk/chainprobe/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// translateProbe converts the HCL-specific probe schema into the agnostic
// model, parsing kinds, access policies, and type expressions.
func (l *Loader) translateProbe(ctx context.Context, p *schema.Probe) (*config.ProbeDefinition, error) {
	definition := &config.ProbeDefinition{
		Name:        p.Name,
		Description: p.Description,
		EntryPoints: make(map[string]*config.EntryPointDefinition),
	}

	for _, ep := range p.EntryPoints {
		if _, exists := definition.EntryPoints[ep.Name]; exists {
			return nil, fmt.Errorf("probe %q: duplicate entry point %q", p.Name, ep.Name)
		}

		kind, err := contract.ParseKind(ep.Kind)
		if err != nil {
			return nil, fmt.Errorf("probe %q, entry point %q: %w", p.Name, ep.Name, err)
		}
		access, err := contract.ParseAccess(ep.Access)
		if err != nil {
			return nil, fmt.Errorf("probe %q, entry point %q: %w", p.Name, ep.Name, err)
		}
		returns, err := typeExprToCtyType(ctx, ep.Returns)
		if err != nil {
			return nil, fmt.Errorf("probe %q, entry point %q returns: %w", p.Name, ep.Name, err)
		}

		params := make([]contract.Parameter, 0, len(ep.Params))
		for _, param := range ep.Params {
			paramType, err := typeExprToCtyType(ctx, param.Type)
			if err != nil {
				return nil, fmt.Errorf("probe %q, entry point %q, parameter %q: %w", p.Name, ep.Name, param.Name, err)
			}
			if paramType == cty.NilType {
				return nil, fmt.Errorf("probe %q, entry point %q, parameter %q: parameters cannot be unit", p.Name, ep.Name, param.Name)
			}
			params = append(params, contract.Parameter{Name: param.Name, Type: paramType})
		}

		definition.EntryPoints[ep.Name] = &config.EntryPointDefinition{
			Name:    ep.Name,
			Kind:    kind,
			Access:  access,
			Params:  params,
			Returns: returns,
			Handler: ep.Handler,
		}
	}
	return definition, nil
}

// translateRun converts a run block, evaluating its argument expressions to
// concrete values. Run arguments cannot reference variables.
func (l *Loader) translateRun(r *schema.Run) (*config.Run, error) {
	run := &config.Run{
		ProbeType: r.ProbeType,
		Name:      r.Name,
		Arguments: make(map[string]cty.Value),
	}

	if r.Arguments == nil {
		return run, nil
	}
	attrs, diags := r.Arguments.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("run %q arguments: %w", r.Name, diags)
	}
	for name, attr := range attrs {
		value, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("run %q argument %q: %w", r.Name, name, diags)
		}
		run.Arguments[name] = value
	}
	return run, nil
}
