package controllers

import (
	"net/http"

	"quill/app/services"
)

// commentRequest is the JSON body accepted by Create and Edit.
type commentRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

// Index lists the comments of a post
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	comments, err := cc.commentService.ListComments(postID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comments)
}

// Show returns a single comment of a post
func (cc *CommentController) Show(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentIDs(r)
	if !ok {
		sendError(w, "Invalid post or comment ID", http.StatusBadRequest)
		return
	}

	comment, found, err := cc.commentService.GetComment(postID, commentID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	if !found {
		sendError(w, "Comment not found", http.StatusNotFound)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}

// Create handles adding a comment to a post
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		sendDecodeError(w, err)
		return
	}

	comment, err := cc.commentService.CreateComment(postID, req.Text, req.Author)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, comment)
}

// Edit handles updating a comment
func (cc *CommentController) Edit(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentIDs(r)
	if !ok {
		sendError(w, "Invalid post or comment ID", http.StatusBadRequest)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		sendDecodeError(w, err)
		return
	}

	comment, err := cc.commentService.UpdateComment(postID, commentID, req.Text, req.Author)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}

// Delete handles deleting a comment
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentIDs(r)
	if !ok {
		sendError(w, "Invalid post or comment ID", http.StatusBadRequest)
		return
	}

	if err := cc.commentService.DeleteComment(postID, commentID); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func commentIDs(r *http.Request) (int, int, bool) {
	postID, ok := pathID(r, "id")
	if !ok {
		return 0, 0, false
	}
	commentID, ok := pathID(r, "commentId")
	return postID, commentID, ok
}
