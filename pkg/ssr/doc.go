// Package ssr dispatches full-document page renders to an external
// server-side renderer.
//
// The render function is owned by the application. The dispatcher hands it
// the just-built Page Object and returns the head fragments and body HTML
// to splice into the document:
//
//	d := ssr.NewDispatcher(ssr.NewHTTPRenderer("http://127.0.0.1:13714/render"),
//	    ssr.WithPolicy(ssr.PolicyDegrade),
//	)
//	res, err := d.Render(ctx, page)
//
// # Failure Policy
//
// PolicyStrict (the default) reports every failure as *ssr.Error and the
// caller decides how to respond. PolicyDegrade logs the failure and
// returns a nil result so the document is served client-rendered.
// There are no retries.
package ssr
