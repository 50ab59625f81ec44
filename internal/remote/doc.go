// Package remote implements the HTTP clients for the snapshot storage
// listing, the per-channel release feed and per-revision artifact
// metadata.
package remote
