// Package common holds helpers shared by the tool packages: result shaping
// for guarded relay calls and the instrumented handler wrapper.
package common
