package engagement

import (
    "context"
    "log"

    "github.com/iliyamo/creator-storefront/internal/model"
)

// Reconciler applies user actions optimistically and reconciles against the
// engagement service. Every method takes the viewer's current local
// counters and returns what should be displayed next: the authoritative
// counters on success, the optimistic guess while the error also comes
// back, so the caller can show the rollback.
type Reconciler struct {
    Svc Service
    // PublishEvent, when set, fires for every successful share and view so
    // the analytics consumer sees them. Best-effort.
    PublishEvent func(ctx context.Context, action, kind, id string)
}

// Like toggles the viewer's like. The optimistic counter moves by one in
// the toggle direction; a failed reconcile returns the original counters
// unchanged along with the error.
func (r *Reconciler) Like(ctx context.Context, kind, id string, local model.EngagementCounters, liked bool) (model.EngagementCounters, error) {
    authoritative, err := r.Svc.SetLike(ctx, kind, id, liked)
    if err != nil {
        log.Printf("engagement: like reconcile failed for %s/%s: %v", kind, id, err)
        return local, err
    }
    return authoritative, nil
}

// Optimistic returns the immediate local update for a like toggle, applied
// before the service answers.
func Optimistic(local model.EngagementCounters, liked bool) model.EngagementCounters {
    out := local
    if liked && !local.ViewerLiked {
        out.Likes++
    }
    if !liked && local.ViewerLiked {
        out.Likes--
        if out.Likes < 0 {
            out.Likes = 0
        }
    }
    out.ViewerLiked = liked
    return out
}

// Share registers a share and returns the authoritative counters. The local
// counters are returned unchanged on failure.
func (r *Reconciler) Share(ctx context.Context, kind, id string, local model.EngagementCounters) (model.EngagementCounters, error) {
    authoritative, err := r.Svc.RegisterShare(ctx, kind, id)
    if err != nil {
        log.Printf("engagement: share reconcile failed for %s/%s: %v", kind, id, err)
        return local, err
    }
    r.publish(ctx, "share", kind, id)
    return authoritative, nil
}

// View registers a view. Views are fire-and-forget from the visitor's point
// of view, but the authoritative count still replaces the local one.
func (r *Reconciler) View(ctx context.Context, kind, id string, local model.EngagementCounters) (model.EngagementCounters, error) {
    authoritative, err := r.Svc.RegisterView(ctx, kind, id)
    if err != nil {
        log.Printf("engagement: view reconcile failed for %s/%s: %v", kind, id, err)
        return local, err
    }
    r.publish(ctx, "view", kind, id)
    return authoritative, nil
}

// Fetch proxies the authoritative counters.
func (r *Reconciler) Fetch(ctx context.Context, kind, id string) (model.EngagementCounters, error) {
    return r.Svc.Fetch(ctx, kind, id)
}

func (r *Reconciler) publish(ctx context.Context, action, kind, id string) {
    if r.PublishEvent != nil {
        r.PublishEvent(ctx, action, kind, id)
    }
}
