package object

// setRaw overwrites the bytes under h, bypassing Put's no-op on existing
// keys, to simulate on-disk corruption.
func (b *MemoryBackend) setRaw(h Hash, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[h] = data
}
