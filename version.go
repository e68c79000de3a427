package vfsh

// Version is stamped at build time with -ldflags "-X github.com/brettbedarf/vfsh.Version=..."
var Version = "dev"
