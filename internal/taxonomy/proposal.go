package taxonomy

import (
	"encoding/json"
	"fmt"
)

// Proposal is one model-suggested extension to a single domain.
//
// On the wire the domain travels as a dynamic property name next to a fixed
// "justification" sibling:
//
//	{"healing": {"physical_health": {"subcategories": [...]}}, "justification": "..."}
//
// The codec special-cases the single property that is not "justification"
// rather than reflecting over arbitrary keys.
type Proposal struct {
	Domain        string
	Group         Group
	Justification string
}

func (p Proposal) MarshalJSON() ([]byte, error) {
	payload := map[string]any{"justification": p.Justification}
	if p.Domain != "" {
		group := p.Group
		if group == nil {
			group = Group{}
		}
		payload[p.Domain] = group
	}
	return json.Marshal(payload)
}

func (p *Proposal) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Proposal{}
	for key, value := range raw {
		if key == "justification" {
			if err := json.Unmarshal(value, &p.Justification); err != nil {
				return fmt.Errorf("proposal justification: %w", err)
			}
			continue
		}
		if p.Domain != "" {
			return fmt.Errorf("proposal carries more than one domain property: %q and %q", p.Domain, key)
		}
		p.Domain = key
		if err := json.Unmarshal(value, &p.Group); err != nil {
			return fmt.Errorf("proposal domain %q: %w", key, err)
		}
	}
	return nil
}
