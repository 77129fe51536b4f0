package pipes

// Consumer applies resolved pipes.
type Consumer struct{}

func NewConsumer() *Consumer {
	return &Consumer{}
}

// ApplyPipes threads value through pipes left to right. The first error
// stops the chain and is returned unchanged.
func (c *Consumer) ApplyPipes(value any, meta ArgumentMetadata, pipes []Pipe) (any, error) {
	var err error
	for _, p := range pipes {
		value, err = p.Transform(value, meta)
		if err != nil {
			return nil, err
		}
	}
	return value, nil
}
