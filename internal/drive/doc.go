// Package drive is a thin relay client for the Drive REST API.
package drive
