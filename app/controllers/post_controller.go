package controllers

import (
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"quill/app/services"

	"golang.org/x/crypto/blake2b"
)

// DefaultMaxImageBytes caps uploads when the controller is built without a limit.
const DefaultMaxImageBytes = 5 << 20

// postRequest is the JSON body accepted by Create and Edit.
type postRequest struct {
	Title string   `json:"title"`
	Text  string   `json:"text"`
	Tags  []string `json:"tags"`
}

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService   *services.PostService
	maxImageBytes int64
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, maxImageBytes int64) *PostController {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &PostController{
		postService:   postService,
		maxImageBytes: maxImageBytes,
	}
}

// Index handles listing and searching posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	pageNumber := queryInt(r, "pageNumber")
	pageSize := queryInt(r, "pageSize")

	page, err := pc.postService.ListPosts(search, pageNumber, pageSize)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, page)
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, found, err := pc.postService.GetPost(id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	if !found {
		sendError(w, "Post not found", http.StatusNotFound)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		sendDecodeError(w, err)
		return
	}

	post, err := pc.postService.CreatePost(req.Title, req.Text, req.Tags)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Edit handles updating an existing post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		sendDecodeError(w, err)
		return
	}

	post, err := pc.postService.UpdatePost(id, req.Title, req.Text, req.Tags)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := pc.postService.DeletePost(id); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Like handles adding a like to a post
func (pc *PostController) Like(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	likes, err := pc.postService.IncrementLikes(id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]int{"id": id, "likesCount": likes})
}

// UploadImage stores the request payload as the post image. The image is
// read from the multipart field "image" or, for any other content type,
// from the raw body.
func (pc *PostController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, pc.maxImageBytes)
	data, err := pc.readImage(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, "Image too large", http.StatusRequestEntityTooLarge)
			return
		}
		sendError(w, "Invalid image upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := pc.postService.AttachImage(id, data); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (pc *PostController) readImage(r *http.Request) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(pc.maxImageBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// ShowImage serves the post image with a sniffed content type and a
// content-hash ETag.
func (pc *PostController) ShowImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	data, found, err := pc.postService.GetImage(id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	if !found {
		sendError(w, "Image not found", http.StatusNotFound)
		return
	}

	etag := imageETag(data)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func imageETag(data []byte) string {
	sum := blake2b.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
