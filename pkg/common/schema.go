package common

import "strings"

// TypePair is an allowed (source type, target type) combination for a relation.
type TypePair struct {
	Source NodeType
	Target NodeType
}

// compatibility maps every relation to the endpoint types it may connect.
// Relationships outside this table are removed during graph repair.
var compatibility = map[RelationType][]TypePair{
	RelationOwns:             {{NodeTypeOrganization, NodeTypeOrganization}},
	RelationHasRisk:          {{NodeTypeOrganization, NodeTypeRiskFactor}},
	RelationReportsAmount:    {{NodeTypeOrganization, NodeTypeMonetaryAmount}},
	RelationPartneredWith:    {{NodeTypeOrganization, NodeTypeOrganization}},
	RelationJointVentureWith: {{NodeTypeOrganization, NodeTypeOrganization}},
	RelationInvestedIn: {
		{NodeTypeOrganization, NodeTypeOrganization},
		{NodeTypeOrganization, NodeTypeMonetaryAmount},
	},
	RelationRaisedCapital:  {{NodeTypeOrganization, NodeTypeMonetaryAmount}},
	RelationCommittedCapex: {{NodeTypeOrganization, NodeTypeMonetaryAmount}},
	RelationImpactedBy: {
		{NodeTypeOrganization, NodeTypeRiskFactor},
		{NodeTypeMonetaryAmount, NodeTypeRiskFactor},
	},
	RelationDeclinedDueTo: {{NodeTypeMonetaryAmount, NodeTypeRiskFactor}},
	RelationSubjectTo:     {{NodeTypeOrganization, NodeTypeRiskFactor}},
}

// Allowed reports whether relation may connect a source of type src to a
// target of type tgt.
func Allowed(relation RelationType, src, tgt NodeType) bool {
	for _, pair := range compatibility[relation] {
		if pair.Source == src && pair.Target == tgt {
			return true
		}
	}
	return false
}

// AllowedPairs returns a copy of the permitted endpoint types for relation.
func AllowedPairs(relation RelationType) []TypePair {
	pairs := compatibility[relation]
	out := make([]TypePair, len(pairs))
	copy(out, pairs)
	return out
}

// RelationTypes lists the relations of the compatibility table in a stable order.
func RelationTypes() []RelationType {
	return []RelationType{
		RelationOwns,
		RelationHasRisk,
		RelationReportsAmount,
		RelationPartneredWith,
		RelationJointVentureWith,
		RelationInvestedIn,
		RelationRaisedCapital,
		RelationCommittedCapex,
		RelationImpactedBy,
		RelationDeclinedDueTo,
		RelationSubjectTo,
	}
}

var nodeTypeAliases = map[string]NodeType{
	"ORGANIZATION":    NodeTypeOrganization,
	"ORGANISATION":    NodeTypeOrganization,
	"COMPANY":         NodeTypeOrganization,
	"CORPORATION":     NodeTypeOrganization,
	"SUBSIDIARY":      NodeTypeOrganization,
	"RISKFACTOR":      NodeTypeRiskFactor,
	"RISK":            NodeTypeRiskFactor,
	"MONETARYAMOUNT":  NodeTypeMonetaryAmount,
	"DOLLARAMOUNT":    NodeTypeMonetaryAmount,
	"AMOUNT":          NodeTypeMonetaryAmount,
	"MONEY":           NodeTypeMonetaryAmount,
	"FINANCIALAMOUNT": NodeTypeMonetaryAmount,
}

var relationAliases = map[string]RelationType{
	"SUBSIDIARY":      RelationOwns,
	"SUBSIDIARY_OF":   RelationOwns,
	"PART_OF":         RelationOwns,
	"PART_OF_GROUP":   RelationOwns,
	"BELONGS_TO":      RelationOwns,
	"JOINT_VENTURE":   RelationJointVentureWith,
	"JV":              RelationJointVentureWith,
	"PARTNER":         RelationPartneredWith,
	"PARTNERS_WITH":   RelationPartneredWith,
	"FACES_RISK":      RelationHasRisk,
	"EXPOSED_TO":      RelationHasRisk,
	"REPORTED":        RelationReportsAmount,
	"REPORTS":         RelationReportsAmount,
	"REVENUE":         RelationReportsAmount,
	"INVESTS_IN":      RelationInvestedIn,
	"RAISED":          RelationRaisedCapital,
	"AFFECTED_BY":     RelationImpactedBy,
	"DECLINED":        RelationDeclinedDueTo,
	"REGULATED_BY":    RelationSubjectTo,
	"COMMITTED_TO":    RelationCommittedCapex,
	"CAPEX":           RelationCommittedCapex,
	"IMPACTS":         RelationImpactedBy,
	"HAS_RISK_FACTOR": RelationHasRisk,
}

// ParseNodeType maps a provider-supplied type label onto a known node type.
// Matching ignores case, spaces, dashes and underscores.
func ParseNodeType(raw string) (NodeType, bool) {
	key := strings.ToUpper(raw)
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	if key == "" {
		return "", false
	}
	t, ok := nodeTypeAliases[key]
	return t, ok
}

// ParseRelationType maps a provider-supplied relation label onto a relation
// of the compatibility table, accepting a small set of common synonyms.
func ParseRelationType(raw string) (RelationType, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if key == "" {
		return "", false
	}
	if rel := RelationType(key); rel.Valid() {
		return rel, true
	}
	rel, ok := relationAliases[key]
	return rel, ok
}
