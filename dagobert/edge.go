package dagobert

// applyEdge turns one upstream raw value into a (key, value) contribution
// for the consumer's input map, or signals omission.
//
// Order is significant and observable: Transform always runs before
// Filter. Edge operators run on the consumer's side of the wire — they
// have no access to the producer's execution context.
func applyEdge(opts *EdgeOptions, from string, v any) (key string, value any, ok bool) {
	if opts != nil && opts.Transform != nil {
		v = opts.Transform(v)
	}
	if opts != nil && opts.Filter != nil && !opts.Filter(v) {
		return "", nil, false
	}
	key = from
	if opts != nil && opts.Name != "" {
		key = opts.Name
	}
	return key, v, true
}
