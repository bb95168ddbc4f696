package domain

import (
	"github.com/ayurmap/termbridge-backend/internal/domain/mapping"
	"github.com/ayurmap/termbridge-backend/internal/domain/terminology"
)

const (
	SystemNamaste        = terminology.SystemNamaste
	SystemICD11TM2       = terminology.SystemICD11TM2
	SystemICD11MMS       = terminology.SystemICD11MMS
	SystemSemanticBridge = terminology.SystemSemanticBridge
	SystemICD11Release   = terminology.SystemICD11Release
)

const (
	TierDirectMatch    = mapping.TierDirectMatch
	TierBiomedical     = mapping.TierBiomedical
	TierSemanticBridge = mapping.TierSemanticBridge
	TierUnmappable     = mapping.TierUnmappable

	EquivalenceEquivalent = mapping.EquivalenceEquivalent
	EquivalenceRelatedTo  = mapping.EquivalenceRelatedTo
	EquivalenceNarrower   = mapping.EquivalenceNarrower
	EquivalenceInexact    = mapping.EquivalenceInexact
	EquivalenceUnmatched  = mapping.EquivalenceUnmatched

	RunStatusQueued    = mapping.RunStatusQueued
	RunStatusRunning   = mapping.RunStatusRunning
	RunStatusCompleted = mapping.RunStatusCompleted
	RunStatusFailed    = mapping.RunStatusFailed

	RunTypeComprehensive = mapping.RunTypeComprehensive
	RunTypeRegistrySync  = mapping.RunTypeRegistrySync
	RunPointerLatest     = mapping.RunPointerLatest
)

type NamasteTerm = terminology.Term
type TermDesignation = terminology.Designation
type TermProperty = terminology.Property
type SourceConcept = terminology.Concept
type ICDEntity = terminology.Entity

type MatchTier = mapping.Tier
type Equivalence = mapping.Equivalence
type MappingCandidate = mapping.Candidate
type MappingRecord = mapping.Record
type MappingRun = mapping.Run
type MappingRunPointer = mapping.RunPointer
type MappingValidation = mapping.Validation
type ConceptMapDoc = mapping.ConceptMap
type ConceptMapGroup = mapping.Group
type ConceptMapElement = mapping.Element
type ConceptMapTarget = mapping.TargetEntry
