package freeze

// DiscoverPolicy configures link discovery.
// A nil *DiscoverPolicy in a crawler configuration disables discovery.
type DiscoverPolicy struct {
	// MaxDepth bounds the hop count from a seed route whose links are
	// followed. Nil means unbounded; 0 crawls the seeds only.
	MaxDepth *int `yaml:"maxDepth" validate:"omitempty,min=0"`

	// Ignore lists glob patterns ("*" and "?") matched against URL paths.
	Ignore []string `yaml:"ignore" validate:"dive,required"`
}

// Validate returns an error if the policy contains invalid fields.
func (p *DiscoverPolicy) Validate() error {
	if p == nil {
		return nil
	}
	if p.MaxDepth != nil && *p.MaxDepth < 0 {
		return Errorf(EINVALID, "discover max depth must be a non-negative integer, got %d", *p.MaxDepth)
	}
	for i, pattern := range p.Ignore {
		if pattern == "" {
			return Errorf(EINVALID, "discover ignore pattern %d is empty", i)
		}
	}
	return nil
}
