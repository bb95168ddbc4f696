package terminology

// Canonical system URIs for the code systems the mapper bridges.
const (
	SystemNamaste        = "http://namaste.ayush.gov.in/fhir/CodeSystem/namaste"
	SystemICD11TM2       = "http://id.who.int/icd/release/11/mms/tm2"
	SystemICD11MMS       = "http://id.who.int/icd/release/11/mms"
	SystemSemanticBridge = "http://namaste.ayush.gov.in/fhir/CodeSystem/semantic-bridge"

	// SystemICD11Release is the version-independent target URI used on
	// published ConceptMaps.
	SystemICD11Release = "http://id.who.int/icd/release/11"
)
