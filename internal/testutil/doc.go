// Package testutil contains helper builders and scripted collaborators used
// across tests to reduce boilerplate when constructing model replies,
// configurations and agent doubles. They are not intended for production
// usage.
package testutil
