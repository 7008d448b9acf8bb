// Package mmap maps local signature files read-only into memory.
//
// Signature files are read once, front to back, so mappings are advised as
// sequential on platforms that support madvise(2).
//
//	m, err := mmap.Open("47.fa.sig")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
package mmap
