// Package security implements persistence for sensors and system statuses.
//
// MemoryRepository keeps everything in process memory. FileRepository
// additionally writes every change through to a state file on disk, encoded
// as YAML or MessagePack depending on the file extension. Both satisfy the
// Repository interface that the security engine depends on.
package security
