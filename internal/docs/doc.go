// Package docs is a thin relay client for the Docs REST API.
package docs
