// Package sheets is a thin relay client for the Sheets REST API.
package sheets
