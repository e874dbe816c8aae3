package signerv1

// Capability 取值。
const (
	CapabilityCredentialPrompt = "credential_prompt"
)

// Payload kind 取值。
const (
	KindTransaction = "transaction"
	KindData        = "data"
	KindTypedData   = "typed_data"
)
