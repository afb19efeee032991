// Package clientcli uploads files to and downloads files from a running shelf
// server, and formats command output for the shelf CLI.
//
// # Usage
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://192.168.1.20:8000"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//	    LocalPaths: []string{"report.pdf"},
//	    RemoteDir:  "/inbox/",
//	})
//
// Uploads are sent as multipart/form-data with a single "file" field and a
// known Content-Length, streaming the file from disk. The server answers
// every upload with an HTML page; the client reads the outcome from it.
//
// # Output
//
// NewFormatter returns a HumanFormatter or a JSONFormatter for upload,
// download and journal history results.
package clientcli
