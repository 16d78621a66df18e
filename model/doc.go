// Package model defines the language-model collaborator: a Provider interface
// for backends and Conversation, a Client that keeps one shared history over
// several named providers.
//
// Concrete providers live in subpackages (openai, anthropic, gollm) so users
// only pull in the SDKs they need.
package model
