package model

// Empty is a model that represents an object without declared fields.
// It is the schema used for action payloads a definition leaves out.
type Empty struct{}

var _ WithSchema = (*Empty)(nil)

func (e Empty) Schema() []byte {
	return []byte(`
		{
			"type":"object",
			"properties":{}
		}`,
	)
}

func (e Empty) Example() []byte {
	return []byte(`{}`)
}

func (e Empty) Name() string {
	return "EmptyObject"
}
