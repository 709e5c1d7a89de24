package repository

import (
	"context"
	"errors"
	"log"
	"reliance-backend/internal/task/domain"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const taskCollection = "tasks"

// newestFirst matches the list order of every TaskRepository backend
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}

// mongoTaskRepository implements TaskRepository on a MongoDB collection
type mongoTaskRepository struct {
	coll *mongo.Collection
}

// NewMongoTaskRepository creates a MongoDB-backed TaskRepository
func NewMongoTaskRepository(db *mongo.Database) TaskRepository {
	coll := db.Collection(taskCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "valueZoneId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "deadline", Value: 1}}},
	})
	if err != nil {
		log.Printf("[TaskRepository] Failed to create mongo indexes: %v", err)
	}

	return &mongoTaskRepository{coll: coll}
}

func (r *mongoTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Subtasks == nil {
		task.Subtasks = domain.SubtaskList{}
	}
	if task.Tags == nil {
		task.Tags = domain.StringList{}
	}
	if task.DependencyIDs == nil {
		task.DependencyIDs = domain.StringList{}
	}
	_, err := r.coll.InsertOne(ctx, task)
	return err
}

func (r *mongoTaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoTaskRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Task, error) {
	return r.find(ctx, bson.M{"userId": userID}, options.Find().SetSort(newestFirst))
}

func (r *mongoTaskRepository) FindWithFilters(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if filter.ValueZoneID != "" {
		query["valueZoneId"] = filter.ValueZoneID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	scheduled := bson.M{}
	if filter.ScheduledFrom != nil {
		scheduled["$gte"] = *filter.ScheduledFrom
	}
	if filter.ScheduledUntil != nil {
		scheduled["$lte"] = *filter.ScheduledUntil
	}
	if len(scheduled) > 0 {
		query["scheduledStart"] = scheduled
	}
	if filter.DeadlineBefore != nil {
		query["deadline"] = bson.M{"$lte": *filter.DeadlineBefore}
	}

	return r.find(ctx, query, options.Find().SetSort(newestFirst))
}

func (r *mongoTaskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	set := patchDocument(patch)
	set["updatedAt"] = time.Now().UTC()
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *mongoTaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

func (r *mongoTaskRepository) DeleteMany(ctx context.Context, ids []string) (bool, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return true, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}}

	// Refuse up front when some ids are already gone so nothing is half-deleted
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	if count != int64(len(ids)) {
		return false, nil
	}

	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return false, err
	}
	return res.DeletedCount == int64(len(ids)), nil
}

func (r *mongoTaskRepository) AddSubtask(ctx context.Context, taskID, subtaskID string, order int) (*domain.Task, error) {
	update := bson.M{
		"$push": bson.M{"subtasks": domain.Subtask{Order: order, SubtaskID: subtaskID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": taskID}, update)
}

func (r *mongoTaskRepository) AppendSubtaskIfAbsent(ctx context.Context, taskID, subtaskID string) (*domain.Task, error) {
	parent, err := r.FindByID(ctx, taskID)
	if err != nil || parent == nil {
		return nil, err
	}
	if parent.HasSubtask(subtaskID) {
		return nil, domain.ErrSubtaskAlreadyLinked
	}

	// The $ne guard makes the push conditional on the link still being absent
	filter := bson.M{"_id": taskID, "subtasks.subtaskId": bson.M{"$ne": subtaskID}}
	update := bson.M{
		"$push": bson.M{"subtasks": domain.Subtask{Order: parent.MaxSubtaskOrder() + 1, SubtaskID: subtaskID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	task, err := r.findOneAndUpdate(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	if task != nil {
		return task, nil
	}

	current, err := r.FindByID(ctx, taskID)
	if err != nil || current == nil {
		return nil, err
	}
	return nil, domain.ErrSubtaskAlreadyLinked
}

func (r *mongoTaskRepository) RemoveSubtask(ctx context.Context, taskID, subtaskID string) (bool, error) {
	update := bson.M{
		"$pull": bson.M{"subtasks": bson.M{"subtaskId": subtaskID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": taskID, "subtasks.subtaskId": subtaskID}, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoTaskRepository) UpdateSubtaskOrder(ctx context.Context, taskID, subtaskID string, order int) (*domain.Task, error) {
	filter := bson.M{"_id": taskID, "subtasks.subtaskId": subtaskID}
	update := bson.M{"$set": bson.M{
		"subtasks.$[link].order": order,
		"updatedAt":              time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{bson.M{"link.subtaskId": subtaskID}}})

	var task domain.Task
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *mongoTaskRepository) FindSubtasks(ctx context.Context, taskID string) ([]*domain.Task, error) {
	parent, err := r.FindByID(ctx, taskID)
	if err != nil || parent == nil {
		return []*domain.Task{}, err
	}
	ids := parent.SubtaskIDs()
	if len(ids) == 0 {
		return []*domain.Task{}, nil
	}

	children, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	domain.SortByLinkOrder(parent, children)
	return children, nil
}

func (r *mongoTaskRepository) FindOverdue(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	return r.find(ctx, bson.M{
		"deadline": bson.M{"$ne": nil, "$lt": now},
		"status":   bson.M{"$in": openStatuses()},
	}, nil)
}

func (r *mongoTaskRepository) MarkMissed(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": openStatuses()}},
		bson.M{"$set": bson.M{"status": domain.TaskStatusMissed, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *mongoTaskRepository) findOne(ctx context.Context, filter bson.M) (*domain.Task, error) {
	var task domain.Task
	err := r.coll.FindOne(ctx, filter).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *mongoTaskRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Task, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var task domain.Task
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *mongoTaskRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Task, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cursor, err := r.coll.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := make([]*domain.Task, 0)
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// patchDocument maps the set fields of a patch to bson field names
func patchDocument(p domain.TaskPatch) bson.M {
	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.ValueZoneID != nil {
		set["valueZoneId"] = *p.ValueZoneID
	}
	if p.ScheduledStart != nil {
		set["scheduledStart"] = *p.ScheduledStart
	}
	if p.ScheduledEnd != nil {
		set["scheduledEnd"] = *p.ScheduledEnd
	}
	if p.Deadline != nil {
		set["deadline"] = *p.Deadline
	}
	if p.Brainpower != nil {
		set["brainpower"] = *p.Brainpower
	}
	if p.TimeFixed != nil {
		set["timeFixed"] = *p.TimeFixed
	}
	if p.MultitaskAllowed != nil {
		set["multitaskAllowed"] = *p.MultitaskAllowed
	}
	if p.EffortEstimateMinutes != nil {
		set["effortEstimateMinutes"] = *p.EffortEstimateMinutes
	}
	if p.Priority != nil {
		set["priority"] = *p.Priority
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Tags != nil {
		set["tags"] = *p.Tags
	}
	if p.IsRecurring != nil {
		set["isRecurring"] = *p.IsRecurring
	}
	if p.RecurrencePattern != nil {
		set["recurrencePattern"] = *p.RecurrencePattern
	}
	if p.DependencyIDs != nil {
		set["dependencyIds"] = *p.DependencyIDs
	}
	if p.Metadata != nil {
		set["metadata"] = p.Metadata
	}
	return set
}
