package models

// TextSegment is a unit of extracted text with its source upload name.
type TextSegment struct {
	Text   string
	Source string
}

// Chunk is a bounded window over the pooled upload text. Seq is the
// insertion order within the batch and doubles as the retrieval tie-break.
type Chunk struct {
	Text   string
	Source string
	Seq    int
}

// Message is a single transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Greeting seeds every new session transcript.
const Greeting = "Neural link established. Awaiting command."

// GroundedPromptTemplate takes the retrieved context block and the query.
const GroundedPromptTemplate = `You are a real-estate intelligence assistant.
Answer ONLY from the context.
If the context is insufficient, say you don't know.

Context:
%s

Query:
%s
`
