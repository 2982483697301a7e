package dagobert

// broadcastOne reads the single message a node ever emits on in and
// forwards a copy to every channel in outs, then closes every channel in
// outs. If in is closed without a message (should not happen in a
// well-formed run), every out channel is simply closed, matching the
// "every channel carries exactly one message, then closes" invariant.
func broadcastOne(in <-chan message, outs []chan message) {
	m, ok := <-in
	for _, o := range outs {
		if ok {
			o <- m
		}
		close(o)
	}
}

// forwardOne relays the single message from in onto out, or does nothing
// if in closes without one. It is the per-predecessor tap that feeds a
// dependent node's merged inbound channel.
func forwardOne(in <-chan message, out chan<- message) {
	if m, ok := <-in; ok {
		out <- m
	}
}
