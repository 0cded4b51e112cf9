package vocab

// newDefaultRegistry builds a Registry seeded with a small, representative
// slice of the Biolink Model: enough of the class and predicate hierarchy
// for the Validator's required-slot, value-type and category checks, and
// for the Clique Merge Resolver's category-compatibility check, without a
// network round trip to a live biolink-model.yaml.
func newDefaultRegistry(version Version) *Registry {
	r := NewRegistry(version)

	r.RegisterClass("biolink:Entity",
		WithAbstract(),
		WithRequiredSlots("id", "category"),
		WithSlotType("id", ValueTypeCURIE),
		WithSlotType("category", ValueTypeListString))

	r.RegisterClass("biolink:NamedThing",
		WithParent("biolink:Entity"),
		WithRequiredSlots("name"),
		WithSlotType("name", ValueTypeString))

	r.RegisterClass("biolink:BiologicalEntity", WithParent("biolink:NamedThing"), WithAbstract())
	r.RegisterClass("biolink:ChemicalEntity", WithParent("biolink:NamedThing"))
	r.RegisterClass("biolink:Drug", WithParent("biolink:ChemicalEntity"))
	r.RegisterClass("biolink:SmallMolecule", WithParent("biolink:ChemicalEntity"))

	r.RegisterClass("biolink:DiseaseOrPhenotypicFeature", WithParent("biolink:BiologicalEntity"), WithAbstract())
	r.RegisterClass("biolink:Disease", WithParent("biolink:DiseaseOrPhenotypicFeature"))
	r.RegisterClass("biolink:PhenotypicFeature", WithParent("biolink:DiseaseOrPhenotypicFeature"))

	r.RegisterClass("biolink:GenomicEntity", WithParent("biolink:BiologicalEntity"), WithAbstract())
	r.RegisterClass("biolink:Gene",
		WithParent("biolink:GenomicEntity"),
		WithRequiredSlots("symbol"),
		WithSlotType("symbol", ValueTypeString))
	r.RegisterClass("biolink:Protein", WithParent("biolink:GenomicEntity"))
	r.RegisterClass("biolink:Transcript", WithParent("biolink:GenomicEntity"))
	r.RegisterClass("biolink:SequenceVariant", WithParent("biolink:GenomicEntity"))

	r.RegisterClass("biolink:OrganismTaxon", WithParent("biolink:NamedThing"))
	r.RegisterClass("biolink:AnatomicalEntity", WithParent("biolink:BiologicalEntity"))
	r.RegisterClass("biolink:Cell", WithParent("biolink:AnatomicalEntity"))
	r.RegisterClass("biolink:Pathway", WithParent("biolink:BiologicalEntity"))
	r.RegisterClass("biolink:BiologicalProcess", WithParent("biolink:BiologicalEntity"))
	r.RegisterClass("biolink:MolecularActivity", WithParent("biolink:BiologicalEntity"))

	r.RegisterClass("biolink:InformationContentEntity", WithParent("biolink:NamedThing"), WithAbstract())
	r.RegisterClass("biolink:Publication", WithParent("biolink:InformationContentEntity"))
	r.RegisterClass("biolink:Dataset", WithParent("biolink:InformationContentEntity"))

	r.RegisterClass("biolink:Association",
		WithAbstract(),
		WithRequiredSlots("subject", "predicate", "object"),
		WithSlotType("subject", ValueTypeCURIE),
		WithSlotType("object", ValueTypeCURIE),
		WithSlotType("predicate", ValueTypeString),
		WithSlotType("primary_knowledge_source", ValueTypeCURIE),
		WithSlotType("aggregator_knowledge_source", ValueTypeListCURIE),
		WithSlotType("publications", ValueTypeListCURIE))
	r.RegisterClass("biolink:ChemicalToDiseaseOrPhenotypicFeatureAssociation", WithParent("biolink:Association"),
		WithAssociationDomain("biolink:ChemicalEntity"), WithAssociationRange("biolink:Disease"))
	r.RegisterClass("biolink:GeneToDiseaseAssociation", WithParent("biolink:Association"),
		WithAssociationDomain("biolink:Gene"), WithAssociationRange("biolink:DiseaseOrPhenotypicFeature"))
	r.RegisterClass("biolink:ChemicalGeneInteractionAssociation", WithParent("biolink:Association"))

	r.RegisterPredicate("biolink:related_to")
	r.RegisterPredicate("biolink:treats", WithPredicateParent("biolink:related_to"),
		WithDomain("biolink:ChemicalEntity"), WithRangeClass("biolink:Disease"),
		WithInverse("biolink:treated_by"))
	r.RegisterPredicate("biolink:treated_by", WithPredicateParent("biolink:related_to"),
		WithInverse("biolink:treats"))
	r.RegisterPredicate("biolink:causes", WithPredicateParent("biolink:related_to"),
		WithInverse("biolink:caused_by"))
	r.RegisterPredicate("biolink:caused_by", WithPredicateParent("biolink:related_to"),
		WithInverse("biolink:causes"))
	r.RegisterPredicate("biolink:gene_associated_with_condition", WithPredicateParent("biolink:related_to"),
		WithDomain("biolink:Gene"), WithRangeClass("biolink:DiseaseOrPhenotypicFeature"))
	r.RegisterPredicate("biolink:interacts_with", WithPredicateParent("biolink:related_to"), WithSymmetric())
	r.RegisterPredicate("biolink:affects", WithPredicateParent("biolink:related_to"))
	r.RegisterPredicate("biolink:part_of", WithPredicateParent("biolink:related_to"),
		WithInverse("biolink:has_part"))
	r.RegisterPredicate("biolink:has_part", WithPredicateParent("biolink:related_to"),
		WithInverse("biolink:part_of"))
	r.RegisterPredicate("biolink:same_as", WithPredicateParent("biolink:related_to"), WithSymmetric())
	r.RegisterPredicate("biolink:close_match", WithPredicateParent("biolink:related_to"), WithSymmetric())
	r.RegisterPredicate("biolink:subclass_of", WithPredicateParent("biolink:related_to"))
	r.RegisterPredicate("biolink:expressed_in", WithPredicateParent("biolink:related_to"),
		WithDomain("biolink:GenomicEntity"), WithRangeClass("biolink:AnatomicalEntity"))

	return r
}
