// Package gmail is a thin relay client for the Gmail REST API.
package gmail
