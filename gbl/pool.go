package gbl

import "sync"

//Task is one unit of work for a Pool.
type Task interface {
	Run()
}

//TaskFindBestSplit scans one feature of a candidate and stores the outcome
//in its slot of the shared result slice. Slots are disjoint per task, so the
//workers never write the same memory.
type TaskFindBestSplit struct {
	result []featureSplit
	fid    int
	scan   func(int) featureSplit
}

func (t *TaskFindBestSplit) Run() {
	t.result[t.fid] = t.scan(t.fid)
}

//Pool distributes tasks over a fixed set of workers.
type Pool struct {
	tasks chan Task
	wg    sync.WaitGroup
}

//NewPool starts the given number of workers.
func NewPool(threadsNum int) *Pool {
	taskPool := &Pool{tasks: make(chan Task)}
	for p := 0; p < threadsNum; p++ {
		taskPool.wg.Add(1)
		go func() {
			defer taskPool.wg.Done()
			for currentTask := range taskPool.tasks {
				currentTask.Run()
			}
		}()
	}
	return taskPool
}

//AddTask hands one task to the workers. It blocks until a worker picks the
//task up.
func (pool *Pool) AddTask(currentTask Task) {
	pool.tasks <- currentTask
}

//Close tells the workers that no more tasks are coming.
func (pool *Pool) Close() {
	close(pool.tasks)
}

//WaitAll blocks until every added task has finished.
func (pool *Pool) WaitAll() {
	pool.wg.Wait()
}
