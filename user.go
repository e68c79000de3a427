package vfsh

// User is the identity a shell session runs as. Home is a VFS path.
type User struct {
	Name  string
	UID   int
	GID   int
	Home  string
	Admin bool
}
