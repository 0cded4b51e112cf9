package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolink/kgx/model"
	"github.com/biolink/kgx/validate"
	"github.com/biolink/kgx/vocab"
)

func newService() vocab.Service {
	return vocab.ServiceWithVersion("4.2.1")
}

func TestValidateNode_MissingCategoryIsRecorded(t *testing.T) {
	v := validate.NewValidator(newService())
	n := &model.Node{ID: "HGNC:1", Properties: model.PropertyMap{}}
	v.ValidateNode(n)

	report := v.Report()
	require.Contains(t, report, "WARNING")
	assert.Contains(t, report["WARNING"], validate.ErrorTypeNoCategory)
}

func TestValidateNode_MalformedCURIEIsRecorded(t *testing.T) {
	v := validate.NewValidator(newService())
	n := model.NewNode("not-a-curie", "biolink:Gene")
	n.Properties["symbol"] = model.String("A1BG")
	n.Name = "A1BG"
	v.ValidateNode(n)

	report := v.Report()
	assert.Contains(t, report["ERROR"], validate.ErrorTypeInvalidCURIE)
}

func TestValidateNode_UnknownCategoryIsRecorded(t *testing.T) {
	v := validate.NewValidator(newService())
	n := model.NewNode("HGNC:1", "biolink:NotARealClass")
	v.ValidateNode(n)

	report := v.Report()
	assert.Contains(t, report["WARNING"], validate.ErrorTypeInvalidCategory)
}

func TestValidateNode_MissingRequiredSlotIsRecorded(t *testing.T) {
	v := validate.NewValidator(newService())
	n := model.NewNode("HGNC:1", "biolink:Gene")
	n.Name = "A1BG"
	v.ValidateNode(n)

	report := v.Report()
	messages := report["ERROR"][validate.ErrorTypeMissingNodeProperty]
	found := false
	for msg := range messages {
		if msg == `missing required slot "symbol"` {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateNode_ValidNodeProducesNoErrors(t *testing.T) {
	v := validate.NewValidator(newService())
	n := model.NewNode("HGNC:1", "biolink:Gene")
	n.Name = "A1BG"
	n.Properties["symbol"] = model.String("A1BG")
	v.ValidateNode(n)

	assert.True(t, v.Valid())
}

func TestValidateNode_DuplicateIDIsRecordedOnSecondSighting(t *testing.T) {
	v := validate.NewValidator(newService())
	n := model.NewNode("HGNC:1", "biolink:Gene")
	n.Name = "A1BG"
	n.Properties["symbol"] = model.String("A1BG")
	v.ValidateNode(n)
	v.ValidateNode(n)

	report := v.Report()
	assert.Contains(t, report["WARNING"], validate.ErrorTypeDuplicateNode)
}

func TestValidateEdge_UnknownPredicateIsRecorded(t *testing.T) {
	v := validate.NewValidator(newService())
	e := model.NewEdge("HGNC:1", "biolink:not_a_real_predicate", "MONDO:1")
	e.KnowledgeLevel = "knowledge_assertion"
	e.AgentType = "manual_agent"
	v.ValidateEdge(e)

	report := v.Report()
	assert.Contains(t, report["ERROR"], validate.ErrorTypeInvalidEdgePredicate)
}

func TestValidateEdge_NonSnakeCasePredicateIsRecorded(t *testing.T) {
	v := validate.NewValidator(newService())
	e := model.NewEdge("HGNC:1", "biolink:RelatedTo", "MONDO:1")
	v.ValidateEdge(e)

	report := v.Report()
	assert.Contains(t, report["ERROR"], validate.ErrorTypeInvalidEdgePredicate)
}

func TestValidateEdge_MissingKnowledgeLevelIsWarningByDefault(t *testing.T) {
	v := validate.NewValidator(newService())
	e := model.NewEdge("HGNC:1", "biolink:related_to", "MONDO:1")
	v.ValidateEdge(e)

	report := v.Report()
	assert.Contains(t, report["WARNING"], validate.ErrorTypeMissingEdgeProperty)
	assert.NotContains(t, report, "ERROR")
}

func TestValidateEdge_MissingKnowledgeLevelIsErrorInStrictMode(t *testing.T) {
	v := validate.NewValidator(newService(), validate.WithStrictMode(true))
	e := model.NewEdge("HGNC:1", "biolink:related_to", "MONDO:1")
	v.ValidateEdge(e)

	report := v.Report()
	assert.Contains(t, report["ERROR"], validate.ErrorTypeMissingEdgeProperty)
}

func TestValidateEdge_MalformedProvenanceCURIEIsRecorded(t *testing.T) {
	v := validate.NewValidator(newService())
	e := model.NewEdge("HGNC:1", "biolink:related_to", "MONDO:1")
	e.KnowledgeLevel = "knowledge_assertion"
	e.AgentType = "manual_agent"
	e.PrimaryKnowledgeSource = "not a curie"
	v.ValidateEdge(e)

	report := v.Report()
	assert.Contains(t, report["ERROR"], validate.ErrorTypeInvalidCURIE)
}

func TestValidateEdge_ValidEdgeProducesNoErrors(t *testing.T) {
	v := validate.NewValidator(newService())
	e := model.NewEdge("HGNC:1", "biolink:related_to", "MONDO:1")
	e.KnowledgeLevel = "knowledge_assertion"
	e.AgentType = "manual_agent"
	e.PrimaryKnowledgeSource = "infores:test"
	v.ValidateEdge(e)

	assert.True(t, v.Valid())
}
