package service

import (
	"fmt"

	"github.com/fleveque/weather-query-service/internal/llm"
	"github.com/fleveque/weather-query-service/internal/model"
)

// validateParams checks extracted parameters before anything crosses into a
// network call. The LLM is an untrusted producer: a malformed response must
// be rejected here as an interpretation failure, not forwarded upstream to
// fail with a confusing fetch error.
//
// The at-most-3-parameters cap stays a prompt-level instruction; an over-long
// list of valid parameters is still a valid request.
func validateParams(p *model.QueryParams, kind model.ProviderKind) error {
	if p == nil {
		return fmt.Errorf("%w: no parameters extracted", llm.ErrInterpretation)
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", llm.ErrInterpretation, p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", llm.ErrInterpretation, p.Longitude)
	}
	if p.Start == "" || p.End == "" {
		return fmt.Errorf("%w: missing time range", llm.ErrInterpretation)
	}
	if len(p.Parameters) == 0 {
		return fmt.Errorf("%w: no weather parameters selected", llm.ErrInterpretation)
	}

	allowed := make(map[string]struct{})
	for _, name := range model.AllowedParameters(kind) {
		allowed[name] = struct{}{}
	}
	for _, name := range p.Parameters {
		if _, ok := allowed[name]; !ok {
			return fmt.Errorf("%w: parameter %q not allowed for %s", llm.ErrInterpretation, name, kind)
		}
	}

	return nil
}
