// internal/core/services/merge.go
package services

import (
	"reflect"

	"github.com/biblioflow/inventory-update/internal/core/domain"
)

// RetentionPolicy selects which existing instance properties survive an
// update when the incoming record omits them.
type RetentionPolicy int

const (
	// RetainAllOmitted keeps every existing property the incoming record
	// does not set.
	RetainAllOmitted RetentionPolicy = iota
	// RetainListed keeps only the named properties.
	RetainListed
)

// MergePolicy configures instance property retention for update plans.
type MergePolicy struct {
	Policy     RetentionPolicy
	Properties []string
}

// mergeInstanceProperties folds retained existing properties into the
// incoming instance before it replaces the stored one. Identifier lists are
// unioned by value equality rather than replaced, so identifiers
// contributed by other sources survive.
func mergeInstanceProperties(incoming, existing *domain.Instance, policy MergePolicy) {
	in := incoming.Payload()
	ex := existing.Payload()

	if merged := unionIdentifiers(in["identifiers"], ex["identifiers"]); merged != nil {
		in["identifiers"] = merged
	}

	switch policy.Policy {
	case RetainAllOmitted:
		for key, value := range ex {
			if key == "id" || key == "_version" {
				continue
			}
			if _, ok := in[key]; !ok {
				in[key] = value
			}
		}
	case RetainListed:
		for _, key := range policy.Properties {
			if _, ok := in[key]; ok {
				continue
			}
			if value, ok := ex[key]; ok {
				in[key] = value
			}
		}
	}
}

func unionIdentifiers(incoming, existing any) any {
	inList, _ := incoming.([]any)
	exList, _ := existing.([]any)
	if len(exList) == 0 {
		return incoming
	}
	merged := make([]any, len(inList), len(inList)+len(exList))
	copy(merged, inList)
	for _, candidate := range exList {
		found := false
		for _, have := range merged {
			if reflect.DeepEqual(have, candidate) {
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, candidate)
		}
	}
	return merged
}
